package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/etrackfac-api/internal/models"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
)

type requirementRepository interface {
	List(ctx context.Context, filter models.RequirementFilter) ([]models.Requirement, int, error)
	ListBySemester(ctx context.Context, semesterID string) ([]models.Requirement, error)
	FindByID(ctx context.Context, id string) (*models.Requirement, error)
	Create(ctx context.Context, requirement *models.Requirement) error
	Update(ctx context.Context, requirement *models.Requirement) error
	CountSubmissions(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
	DeleteWithSubmissions(ctx context.Context, id string) ([]string, error)
}

type requirementSemesterRepository interface {
	FindByID(ctx context.Context, id string) (*models.Semester, error)
}

type requirementAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateRequirementRequest is the requirement creation payload.
type CreateRequirementRequest struct {
	SemesterID  string     `json:"semester_id" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Description *string    `json:"description"`
	IsRequired  *bool      `json:"is_required"`
	Deadline    *time.Time `json:"deadline"`
}

// UpdateRequirementRequest carries editable requirement fields.
type UpdateRequirementRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	IsRequired  *bool      `json:"is_required"`
	Deadline    *time.Time `json:"deadline"`
}

// RequirementService manages the per-semester requirement catalog.
type RequirementService struct {
	repo      requirementRepository
	semesters requirementSemesterRepository
	audit     requirementAuditRepository
	store     documentStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequirementService constructs a RequirementService instance.
func NewRequirementService(repo requirementRepository, semesters requirementSemesterRepository, audit requirementAuditRepository, store documentStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RequirementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RequirementService{repo: repo, semesters: semesters, audit: audit, store: store, cache: cache, validator: validate, logger: logger}
}

// List returns requirements with submission counts and pagination metadata.
func (s *RequirementService) List(ctx context.Context, filter models.RequirementFilter) ([]models.Requirement, *models.Pagination, error) {
	requirements, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requirements")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}

	return requirements, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a requirement by ID.
func (s *RequirementService) Get(ctx context.Context, id string) (*models.Requirement, error) {
	requirement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "requirement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requirement")
	}
	return requirement, nil
}

// Create inserts a requirement into a semester's catalog.
func (s *RequirementService) Create(ctx context.Context, req CreateRequirementRequest) (*models.Requirement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid requirement payload")
	}

	if _, err := s.semesters.FindByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown semester")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check semester")
	}

	isRequired := true
	if req.IsRequired != nil {
		isRequired = *req.IsRequired
	}

	requirement := &models.Requirement{
		SemesterID:  req.SemesterID,
		Name:        req.Name,
		Description: req.Description,
		IsRequired:  isRequired,
		Deadline:    req.Deadline,
	}

	if err := s.repo.Create(ctx, requirement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create requirement")
	}

	s.invalidateCaches(ctx)
	return requirement, nil
}

// Update edits a requirement.
func (s *RequirementService) Update(ctx context.Context, id string, req UpdateRequirementRequest) (*models.Requirement, error) {
	requirement, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		requirement.Name = *req.Name
	}
	if req.Description != nil {
		requirement.Description = req.Description
	}
	if req.IsRequired != nil {
		requirement.IsRequired = *req.IsRequired
	}
	if req.Deadline != nil {
		requirement.Deadline = req.Deadline
	}

	if err := s.repo.Update(ctx, requirement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update requirement")
	}

	s.invalidateCaches(ctx)
	return requirement, nil
}

// Delete removes a requirement. When submission rows reference it the call
// fails with a conflict carrying the count; passing force removes the
// requirement together with those rows.
func (s *RequirementService) Delete(ctx context.Context, actorID, id string, force bool) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountSubmissions(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count submissions")
	}

	if count > 0 && !force {
		return appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrConfirmationRequired, "requirement has submissions; retry with force to delete them too"),
			map[string]interface{}{"submissions_count": count},
		)
	}

	var filePaths []string
	if count > 0 {
		filePaths, err = s.repo.DeleteWithSubmissions(ctx, id)
	} else {
		err = s.repo.Delete(ctx, id)
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete requirement")
	}

	// Stored documents are cleaned up best effort once the rows are gone.
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
			Action:     models.AuditActionRequirementDelete,
			Resource:   "requirement",
			ResourceID: &id,
		}); err != nil {
			s.logger.Warn("failed to record requirement delete audit log", zap.Error(err))
		}
	}

	s.invalidateCaches(ctx)
	return nil
}

func (s *RequirementService) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "compliance:*"); err != nil {
		s.logger.Warn("failed to invalidate compliance cache", zap.Error(err))
	}
}
