package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/etrackfac-api/internal/models"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
)

// SemesterDeleteConfirmation is the phrase a client must echo before a
// semester cascade delete proceeds.
const SemesterDeleteConfirmation = "delete"

type semesterRepository interface {
	List(ctx context.Context) ([]models.Semester, error)
	FindByID(ctx context.Context, id string) (*models.Semester, error)
	FindActive(ctx context.Context) (*models.Semester, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, semester *models.Semester) error
	Update(ctx context.Context, semester *models.Semester) error
	SetActive(ctx context.Context, id string) error
	DeleteCascade(ctx context.Context, id string) ([]string, error)
}

type semesterAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateSemesterRequest is the semester creation payload.
type CreateSemesterRequest struct {
	Name     string `json:"name" validate:"required"`
	IsActive bool   `json:"is_active"`
}

// UpdateSemesterRequest carries editable semester fields.
type UpdateSemesterRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// SemesterService manages semester periods. At most one semester is active;
// activating one deactivates the rest.
type SemesterService struct {
	repo      semesterRepository
	audit     semesterAuditRepository
	store     documentStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterService constructs a SemesterService instance.
func NewSemesterService(repo semesterRepository, audit semesterAuditRepository, store documentStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SemesterService{repo: repo, audit: audit, store: store, cache: cache, validator: validate, logger: logger}
}

// List returns all semesters.
func (s *SemesterService) List(ctx context.Context) ([]models.Semester, error) {
	semesters, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	return semesters, nil
}

// Get returns a semester by ID.
func (s *SemesterService) Get(ctx context.Context, id string) (*models.Semester, error) {
	semester, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return semester, nil
}

// GetActive returns the currently active semester.
func (s *SemesterService) GetActive(ctx context.Context) (*models.Semester, error) {
	semester, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active semester")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active semester")
	}
	return semester, nil
}

// Create inserts a new semester, optionally activating it.
func (s *SemesterService) Create(ctx context.Context, req CreateSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check semester name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "semester name already exists")
	}

	semester := &models.Semester{Name: req.Name, IsActive: false}
	if err := s.repo.Create(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester")
	}

	if req.IsActive {
		if err := s.repo.SetActive(ctx, semester.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate semester")
		}
		semester.IsActive = true
	}

	return semester, nil
}

// Update edits a semester. Activation flows through SetActive so the single
// active semester invariant holds.
func (s *SemesterService) Update(ctx context.Context, id string, req UpdateSemesterRequest) (*models.Semester, error) {
	semester, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != semester.Name {
		exists, err := s.repo.ExistsByName(ctx, *req.Name, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check semester name")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "semester name already exists")
		}
		semester.Name = *req.Name
	}

	if err := s.repo.Update(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update semester")
	}

	if req.IsActive != nil && *req.IsActive && !semester.IsActive {
		if err := s.repo.SetActive(ctx, id); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate semester")
		}
		semester.IsActive = true
		s.invalidateCaches(ctx)
	}

	return semester, nil
}

// Activate marks the semester active, deactivating all others.
func (s *SemesterService) Activate(ctx context.Context, id string) (*models.Semester, error) {
	semester, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetActive(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate semester")
	}
	semester.IsActive = true

	s.invalidateCaches(ctx)
	return semester, nil
}

// Delete removes a semester and everything under it: requirements and their
// submissions. The client must echo the confirmation phrase; anything else
// leaves the semester untouched.
func (s *SemesterService) Delete(ctx context.Context, actorID, id, confirmation string) error {
	if strings.TrimSpace(strings.ToLower(confirmation)) != SemesterDeleteConfirmation {
		return appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrConfirmationRequired, "type \"delete\" to confirm semester removal"),
			map[string]interface{}{"expected_confirmation": SemesterDeleteConfirmation},
		)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	filePaths, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete semester")
	}

	// The rows are gone either way; stored documents are cleaned up best
	// effort so a stubborn file never undoes the delete.
	if s.store != nil {
		for _, path := range filePaths {
			if err := s.store.Delete(path); err != nil {
				s.logger.Warn("failed to remove deleted submission document", zap.String("path", path), zap.Error(err))
			}
		}
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionSemesterDelete,
			Resource:   "semester",
			ResourceID: &id,
		}); err != nil {
			s.logger.Warn("failed to record semester delete audit log", zap.Error(err))
		}
	}

	s.invalidateCaches(ctx)
	return nil
}

func (s *SemesterService) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "compliance:*"); err != nil {
		s.logger.Warn("failed to invalidate compliance cache", zap.Error(err))
	}
}
