package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/etrackfac-api/internal/dto"
	"github.com/noah-isme/etrackfac-api/internal/models"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
	"github.com/noah-isme/etrackfac-api/pkg/export"
)

type complianceUserRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

type complianceRequirementRepository interface {
	ListBySemester(ctx context.Context, semesterID string) ([]models.Requirement, error)
}

type complianceSubmissionRepository interface {
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, error)
}

// ExportFormat selects the rendering of a compliance export.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ComplianceService folds the submission ledger into the faculty x
// requirement matrix and per-department summaries. Both folds are pure over
// repository rows, so rebuilding them is idempotent; results are cached and
// invalidated whenever the ledger changes.
type ComplianceService struct {
	users        complianceUserRepository
	requirements complianceRequirementRepository
	submissions  complianceSubmissionRepository
	cache        *CacheService
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	logger       *zap.Logger
}

// NewComplianceService constructs a ComplianceService instance.
func NewComplianceService(users complianceUserRepository, requirements complianceRequirementRepository, submissions complianceSubmissionRepository, cache *CacheService, logger *zap.Logger) *ComplianceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplianceService{
		users:        users,
		requirements: requirements,
		submissions:  submissions,
		cache:        cache,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
	}
}

// Matrix builds the faculty x requirement grid for one semester, optionally
// narrowed to a department. Every faculty member appears with exactly one
// cell per requirement; pairs with no ledger row show as missing.
func (s *ComplianceService) Matrix(ctx context.Context, claims *models.JWTClaims, semesterID, departmentID string) (*dto.ComplianceMatrix, error) {
	if !claims.Roles.HasAny(models.RoleProgramChair, models.RoleDean, models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "compliance access required")
	}
	if !claims.Roles.HasAny(models.RoleDean, models.RoleAdmin) {
		// Program chairs are pinned to their own department.
		if claims.DepartmentID == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "reviewer has no department assigned")
		}
		departmentID = claims.DepartmentID
	}

	cacheKey := fmt.Sprintf("compliance:matrix:%s:%s", semesterID, departmentID)
	if s.cache != nil {
		var cached dto.ComplianceMatrix
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	requirements, err := s.requirements.ListBySemester(ctx, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requirements")
	}

	faculty, err := s.listAllFaculty(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	rows, err := s.submissions.List(ctx, models.SubmissionFilter{SemesterID: semesterID, DepartmentID: departmentID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submissions")
	}

	// Index ledger rows by (faculty, requirement).
	type pairKey struct{ faculty, requirement string }
	byPair := make(map[pairKey]*models.SubmissionDetail, len(rows))
	for i := range rows {
		byPair[pairKey{rows[i].FacultyID, rows[i].RequirementID}] = &rows[i]
	}

	refs := make([]dto.RequirementRef, 0, len(requirements))
	for _, requirement := range requirements {
		refs = append(refs, dto.RequirementRef{ID: requirement.ID, Name: requirement.Name})
	}

	matrixRows := make([]dto.MatrixRow, 0, len(faculty))
	for _, member := range faculty {
		row := dto.MatrixRow{
			FacultyID:      member.ID,
			FacultyName:    member.FullName,
			DepartmentID:   member.DepartmentID,
			DepartmentName: member.DepartmentName,
			Submissions:    make([]dto.MatrixCell, 0, len(requirements)),
		}
		for _, requirement := range requirements {
			cell := dto.MatrixCell{
				RequirementID:   requirement.ID,
				RequirementName: requirement.Name,
				Status:          models.SubmissionMissing,
				Deadline:        requirement.Deadline,
			}
			if submission, ok := byPair[pairKey{member.ID, requirement.ID}]; ok {
				cell.Status = submission.Status
			}
			row.Submissions = append(row.Submissions, cell)
		}
		matrixRows = append(matrixRows, row)
	}

	matrix := &dto.ComplianceMatrix{Faculty: matrixRows, Requirements: refs}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, matrix, 0); err != nil {
			s.logger.Warn("failed to cache compliance matrix", zap.Error(err))
		}
	}
	return matrix, nil
}

// listAllFaculty walks every page of active faculty so departments larger
// than one page still fold in full.
func (s *ComplianceService) listAllFaculty(ctx context.Context, departmentID string) ([]models.User, error) {
	facultyRole := models.RoleFaculty
	activeStatus := models.UserStatusActive
	filter := models.UserFilter{
		Role:         &facultyRole,
		Status:       &activeStatus,
		DepartmentID: departmentID,
		Page:         1,
		PageSize:     100,
	}

	var faculty []models.User
	for {
		batch, total, err := s.users.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
		}
		faculty = append(faculty, batch...)
		if len(batch) == 0 || len(faculty) >= total {
			return faculty, nil
		}
		filter.Page++
	}
}

// DepartmentSummaries aggregates the ledger per department for one semester.
// Totals count only submission rows; missing pairs never contribute, so a
// department where nobody uploaded reports zero across the board.
func (s *ComplianceService) DepartmentSummaries(ctx context.Context, semesterID string) ([]dto.DepartmentSummary, error) {
	cacheKey := fmt.Sprintf("compliance:summary:%s", semesterID)
	if s.cache != nil {
		var cached []dto.DepartmentSummary
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return cached, nil
		}
	}

	rows, err := s.submissions.List(ctx, models.SubmissionFilter{SemesterID: semesterID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submissions")
	}

	byDepartment := make(map[string]*dto.DepartmentSummary)
	var order []string
	for _, row := range rows {
		if row.DepartmentID == nil {
			continue
		}
		id := *row.DepartmentID
		summary, ok := byDepartment[id]
		if !ok {
			name := ""
			if row.DepartmentName != nil {
				name = *row.DepartmentName
			}
			summary = &dto.DepartmentSummary{DepartmentID: id, DepartmentName: name}
			byDepartment[id] = summary
			order = append(order, id)
		}
		summary.Total++
		switch row.Status {
		case models.SubmissionPending:
			summary.Pending++
		case models.SubmissionApproved:
			summary.Approved++
		case models.SubmissionRejected:
			summary.Rejected++
		}
	}

	summaries := make([]dto.DepartmentSummary, 0, len(order))
	for _, id := range order {
		summary := byDepartment[id]
		if summary.Total > 0 {
			summary.ComplianceRate = float64(summary.Approved) / float64(summary.Total)
		}
		summaries = append(summaries, *summary)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summaries, 0); err != nil {
			s.logger.Warn("failed to cache department summaries", zap.Error(err))
		}
	}
	return summaries, nil
}

// Export renders the department summary as CSV or PDF bytes.
func (s *ComplianceService) Export(ctx context.Context, semesterID string, format ExportFormat) ([]byte, string, error) {
	summaries, err := s.DepartmentSummaries(ctx, semesterID)
	if err != nil {
		return nil, "", err
	}

	headers := []string{"Department", "Total", "Pending", "Approved", "Rejected", "Compliance Rate"}
	rows := make([]map[string]string, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, map[string]string{
			"Department":      summary.DepartmentName,
			"Total":           fmt.Sprintf("%d", summary.Total),
			"Pending":         fmt.Sprintf("%d", summary.Pending),
			"Approved":        fmt.Sprintf("%d", summary.Approved),
			"Rejected":        fmt.Sprintf("%d", summary.Rejected),
			"Compliance Rate": fmt.Sprintf("%.1f%%", summary.ComplianceRate*100),
		})
	}
	dataset := export.Dataset{Headers: headers, Rows: rows}

	switch ExportFormat(strings.ToLower(string(format))) {
	case ExportPDF:
		payload, err := s.pdf.Render(dataset, "Department Compliance Summary")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	case ExportCSV, "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
