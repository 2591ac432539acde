package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/etrackfac-api/internal/models"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
	"github.com/noah-isme/etrackfac-api/pkg/jobs"
)

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// NotificationService stores review outcome notifications and serves the
// faculty inbox. Writes arrive asynchronously via the jobs queue.
type NotificationService struct {
	repo   notificationRepository
	logger *zap.Logger
}

// NewNotificationService constructs a NotificationService instance.
func NewNotificationService(repo notificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// HandleJob is the queue handler for review notifications.
func (s *NotificationService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(ReviewNotification)
	if !ok {
		s.logger.Warn("dropping notification job with unexpected payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}

	message := fmt.Sprintf("Your submission for %q was %s.", payload.RequirementName, payload.Status)
	if payload.Status == models.SubmissionRejected && payload.Remarks != nil && *payload.Remarks != "" {
		message = fmt.Sprintf("%s Remarks: %s", message, *payload.Remarks)
	}

	submissionID := payload.SubmissionID
	notification := &models.Notification{
		UserID:       payload.FacultyID,
		SubmissionID: &submissionID,
		Message:      message,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("store review notification: %w", err)
	}
	return nil
}

// List returns the caller's notifications together with the unread count.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]models.Notification, int, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return notifications, unread, nil
}

// MarkRead marks one notification read for its owner.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead marks every notification of the caller read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}
