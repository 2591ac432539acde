package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/etrackfac-api/internal/models"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
	"github.com/noah-isme/etrackfac-api/pkg/jobs"
)

type reviewSubmissionRepository interface {
	FindDetailByID(ctx context.Context, id string) (*models.SubmissionDetail, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, error)
	Review(ctx context.Context, id string, status models.SubmissionStatus, remarks *string, reviewerID string, reviewedAt time.Time) (int64, error)
}

type reviewAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ReviewRequest is the approve/reject payload. Remarks are required when
// rejecting so faculty know what to fix.
type ReviewRequest struct {
	Status  models.SubmissionStatus `json:"status" validate:"required,oneof=approved rejected"`
	Remarks *string                 `json:"remarks"`
}

// ReviewNotification is the payload handed to the notification queue after a
// decision lands.
type ReviewNotification struct {
	SubmissionID    string
	FacultyID       string
	RequirementName string
	Status          models.SubmissionStatus
	Remarks         *string
}

// ReviewService drives the submission review state machine. A decision only
// lands on a row that is still pending; review of an already-decided row
// reports a conflict instead of silently overwriting.
type ReviewService struct {
	repo      reviewSubmissionRepository
	audit     reviewAuditRepository
	queue     *jobs.Queue
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService constructs a ReviewService instance. The queue is started
// by the caller and may be nil in tests.
func NewReviewService(repo reviewSubmissionRepository, audit reviewAuditRepository, queue *jobs.Queue, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReviewService{repo: repo, audit: audit, queue: queue, cache: cache, validator: validate, logger: logger}
}

// ListQueue returns submissions for the reviewer's scope. Program chairs are
// pinned to their own department; deans and admins see every department.
func (s *ReviewService) ListQueue(ctx context.Context, claims *models.JWTClaims, filter models.SubmissionFilter) ([]models.SubmissionDetail, error) {
	if !claims.Roles.HasAny(models.RoleProgramChair, models.RoleDean, models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "review access required")
	}

	if s.scopedToDepartment(claims) {
		if claims.DepartmentID == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "reviewer has no department assigned")
		}
		filter.DepartmentID = claims.DepartmentID
	}

	details, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return details, nil
}

// Review applies an approve or reject decision to a pending submission.
func (s *ReviewService) Review(ctx context.Context, claims *models.JWTClaims, submissionID string, req ReviewRequest) (*models.SubmissionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	if req.Status == models.SubmissionRejected && (req.Remarks == nil || *req.Remarks == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "remarks are required when rejecting")
	}

	detail, err := s.repo.FindDetailByID(ctx, submissionID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	}

	if !claims.Roles.HasAny(models.RoleProgramChair, models.RoleDean, models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "review access required")
	}
	if s.scopedToDepartment(claims) {
		if detail.DepartmentID == nil || *detail.DepartmentID != claims.DepartmentID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "submission is outside your department")
		}
	}

	reviewedAt := time.Now().UTC()
	affected, err := s.repo.Review(ctx, submissionID, req.Status, req.Remarks, claims.UserID, reviewedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply review")
	}
	if affected == 0 {
		// Someone decided the row first; report the current state instead
		// of overwriting it.
		current, lookupErr := s.repo.FindDetailByID(ctx, submissionID)
		details := map[string]interface{}{}
		if lookupErr == nil {
			details["status"] = current.Status
		}
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrStaleTransition, "submission is no longer pending"), details)
	}

	detail.Status = req.Status
	detail.Remarks = req.Remarks
	detail.ReviewerID = &claims.UserID
	detail.ReviewedAt = &reviewedAt

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &claims.UserID,
			Action:     models.AuditActionSubmissionReview,
			Resource:   "submission",
			ResourceID: &submissionID,
			NewValues:  []byte(`{"status":"` + string(req.Status) + `"}`),
		}); err != nil {
			s.logger.Warn("failed to record review audit log", zap.Error(err))
		}
	}

	s.notify(detail)
	s.invalidateCaches(ctx)
	return detail, nil
}

func (s *ReviewService) notify(detail *models.SubmissionDetail) {
	if s.queue == nil {
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:   uuid.NewString(),
		Type: "review_notification",
		Payload: ReviewNotification{
			SubmissionID:    detail.ID,
			FacultyID:       detail.FacultyID,
			RequirementName: detail.RequirementName,
			Status:          detail.Status,
			Remarks:         detail.Remarks,
		},
	})
	if err != nil {
		s.logger.Warn("failed to enqueue review notification", zap.String("submission_id", detail.ID), zap.Error(err))
	}
}

// scopedToDepartment reports whether the reviewer only sees one department.
// Dean or admin capability widens the scope to every department.
func (s *ReviewService) scopedToDepartment(claims *models.JWTClaims) bool {
	return !claims.Roles.HasAny(models.RoleDean, models.RoleAdmin)
}

func (s *ReviewService) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "compliance:*"); err != nil {
		s.logger.Warn("failed to invalidate compliance cache", zap.Error(err))
	}
}
