package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/etrackfac-api/internal/dto"
	"github.com/noah-isme/etrackfac-api/internal/models"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
	"github.com/noah-isme/etrackfac-api/pkg/storage"
)

type submissionRepository interface {
	FindCurrent(ctx context.Context, facultyID, requirementID string) (*models.Submission, error)
	FindDetailByID(ctx context.Context, id string) (*models.SubmissionDetail, error)
	ListByFaculty(ctx context.Context, facultyID, semesterID string) ([]models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Replace(ctx context.Context, id, filePath, fileName string) error
}

type submissionRequirementRepository interface {
	FindByID(ctx context.Context, id string) (*models.Requirement, error)
	ListBySemester(ctx context.Context, semesterID string) ([]models.Requirement, error)
}

type submissionAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type documentStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

// UploadRequest carries an incoming submission document.
type UploadRequest struct {
	FacultyID     string
	RequirementID string
	FileName      string
	ContentType   string
	Size          int64
	Body          io.Reader
}

// SubmissionService handles faculty uploads and the checklist view. A pair
// (faculty, requirement) holds at most one current ledger row; uploads are
// accepted only when the pair is missing or its row was rejected.
type SubmissionService struct {
	repo         submissionRepository
	requirements submissionRequirementRepository
	audit        submissionAuditRepository
	store        documentStore
	signer       *storage.SignedURLSigner
	cache        *CacheService
	logger       *zap.Logger

	maxFileSize  int64
	allowedMIMEs map[string]bool
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(repo submissionRepository, requirements submissionRequirementRepository, audit submissionAuditRepository, store documentStore, signer *storage.SignedURLSigner, cache *CacheService, logger *zap.Logger, maxFileSize int64, allowedMIMEs []string) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024
	}
	allowed := make(map[string]bool, len(allowedMIMEs))
	for _, mime := range allowedMIMEs {
		allowed[strings.ToLower(strings.TrimSpace(mime))] = true
	}
	return &SubmissionService{
		repo:         repo,
		requirements: requirements,
		audit:        audit,
		store:        store,
		signer:       signer,
		cache:        cache,
		logger:       logger,
		maxFileSize:  maxFileSize,
		allowedMIMEs: allowed,
	}
}

// Checklist builds the faculty dashboard: every requirement of the semester
// joined against the member's current submissions. Pairs with no ledger row
// get a synthesized missing entry, so the result always has exactly one item
// per requirement, in catalog order.
func (s *SubmissionService) Checklist(ctx context.Context, facultyID, semesterID string) ([]dto.ChecklistItem, error) {
	requirements, err := s.requirements.ListBySemester(ctx, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requirements")
	}

	submissions, err := s.repo.ListByFaculty(ctx, facultyID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submissions")
	}

	byRequirement := make(map[string]*models.Submission, len(submissions))
	for i := range submissions {
		byRequirement[submissions[i].RequirementID] = &submissions[i]
	}

	items := make([]dto.ChecklistItem, 0, len(requirements))
	for _, requirement := range requirements {
		item := dto.ChecklistItem{
			RequirementID:   requirement.ID,
			RequirementName: requirement.Name,
			Description:     requirement.Description,
			IsRequired:      requirement.IsRequired,
			Deadline:        requirement.Deadline,
			Status:          models.SubmissionMissing,
		}
		if submission, ok := byRequirement[requirement.ID]; ok {
			item.Status = submission.Status
			item.SubmissionID = &submission.ID
			item.Remarks = submission.Remarks
			item.FilePath = &submission.FilePath
			submittedAt := submission.UpdatedAt
			item.SubmittedAt = &submittedAt
		}
		items = append(items, item)
	}

	return items, nil
}

// Upload stores a document and writes the ledger. A missing pair gets a new
// pending row; a rejected row is overwritten in place with remarks and
// review fields cleared. Pending and approved rows refuse the upload.
func (s *SubmissionService) Upload(ctx context.Context, req UploadRequest) (*models.Submission, error) {
	if req.FileName == "" || req.Body == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if req.Size > s.maxFileSize {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum allowed size"),
			map[string]interface{}{"max_file_size_bytes": s.maxFileSize},
		)
	}
	if len(s.allowedMIMEs) > 0 && !s.allowedMIMEs[strings.ToLower(req.ContentType)] {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file type is not allowed")
	}

	requirement, err := s.requirements.FindByID(ctx, req.RequirementID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "requirement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requirement")
	}

	current, err := s.repo.FindCurrent(ctx, req.FacultyID, req.RequirementID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current submission")
	}

	if current != nil && current.Status != models.SubmissionRejected {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrConflict, "a submission for this requirement is already under review or approved"),
			map[string]interface{}{"status": current.Status},
		)
	}

	relPath := filepath.Join(requirement.SemesterID, req.RequirementID, fmt.Sprintf("%s_%s", req.FacultyID, sanitizeFileName(req.FileName)))
	storedPath, err := s.store.SaveStream(relPath, req.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}

	var submission *models.Submission
	if current == nil {
		submission = &models.Submission{
			ID:            uuid.NewString(),
			FacultyID:     req.FacultyID,
			RequirementID: req.RequirementID,
			Status:        models.SubmissionPending,
			FilePath:      storedPath,
			FileName:      req.FileName,
		}
		if err := s.repo.Create(ctx, submission); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record submission")
		}
	} else {
		// Re-upload after rejection: the old document is replaced and the
		// row returns to pending with remarks cleared.
		if current.FilePath != "" && current.FilePath != storedPath {
			if err := s.store.Delete(current.FilePath); err != nil {
				s.logger.Warn("failed to remove replaced document", zap.String("path", current.FilePath), zap.Error(err))
			}
		}
		if err := s.repo.Replace(ctx, current.ID, storedPath, req.FileName); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update submission")
		}
		now := time.Now().UTC()
		submission = &models.Submission{
			ID:            current.ID,
			FacultyID:     current.FacultyID,
			RequirementID: current.RequirementID,
			Status:        models.SubmissionPending,
			FilePath:      storedPath,
			FileName:      req.FileName,
			CreatedAt:     current.CreatedAt,
			UpdatedAt:     now,
		}
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &req.FacultyID,
			Action:     models.AuditActionSubmissionUpload,
			Resource:   "submission",
			ResourceID: &submission.ID,
		}); err != nil {
			s.logger.Warn("failed to record upload audit log", zap.Error(err))
		}
	}

	s.invalidateCaches(ctx)
	return submission, nil
}

// Get returns a submission detail visible to the caller. Faculty see only
// their own rows; reviewers see rows in their scope (checked by the caller).
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return detail, nil
}

// DownloadToken issues a signed short-lived token for fetching a document.
func (s *SubmissionService) DownloadToken(ctx context.Context, id string) (string, time.Time, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	token, expiresAt, err := s.signer.Generate(detail.ID, detail.FilePath)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	return token, expiresAt, nil
}

// OpenByToken validates a signed token and opens the referenced document.
func (s *SubmissionService) OpenByToken(ctx context.Context, token string) (*os.File, *models.SubmissionDetail, error) {
	submissionID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	detail, err := s.Get(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}
	if detail.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "download token no longer matches the document")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "document not found")
	}
	return file, detail, nil
}

// Open returns the stored document for a submission.
func (s *SubmissionService) Open(ctx context.Context, id string) (*os.File, *models.SubmissionDetail, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	file, err := s.store.Open(detail.FilePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "document not found")
	}
	return file, detail, nil
}

func (s *SubmissionService) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "compliance:*"); err != nil {
		s.logger.Warn("failed to invalidate compliance cache", zap.Error(err))
	}
}

func sanitizeFileName(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer(" ", "_", "..", "_", "/", "_", "\\", "_")
	return replacer.Replace(name)
}
