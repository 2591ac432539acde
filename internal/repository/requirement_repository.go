package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/etrackfac-api/internal/models"
)

// RequirementRepository provides database access for requirement catalogs.
type RequirementRepository struct {
	db *sqlx.DB
}

// NewRequirementRepository creates a new instance of RequirementRepository.
func NewRequirementRepository(db *sqlx.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

const requirementColumns = `r.id, r.semester_id, r.name, r.description, r.is_required, r.deadline, r.created_at, r.updated_at, s.name AS semester_name`

// List returns requirements with their submission counts, filtered and paginated.
func (r *RequirementRepository) List(ctx context.Context, filter models.RequirementFilter) ([]models.Requirement, int, error) {
	joins := `FROM requirements r JOIN semesters s ON s.id = r.semester_id`
	where := `WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("r.semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(r.name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		where += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT %s, COALESCE(c.cnt, 0) AS submissions_count %s LEFT JOIN (SELECT requirement_id, COUNT(*) AS cnt FROM submissions GROUP BY requirement_id) c ON c.requirement_id = r.id %s ORDER BY r.created_at ASC LIMIT %d OFFSET %d`, requirementColumns, joins, where, pageSize, offset)

	var requirements []models.Requirement
	if err := r.db.SelectContext(ctx, &requirements, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list requirements: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s %s", joins, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count requirements: %w", err)
	}

	return requirements, total, nil
}

// ListBySemester returns the requirement catalog of one semester in creation
// order. Checklist and matrix rows follow this ordering.
func (r *RequirementRepository) ListBySemester(ctx context.Context, semesterID string) ([]models.Requirement, error) {
	query := fmt.Sprintf(`SELECT %s FROM requirements r JOIN semesters s ON s.id = r.semester_id WHERE r.semester_id = $1 ORDER BY r.created_at ASC`, requirementColumns)
	var requirements []models.Requirement
	if err := r.db.SelectContext(ctx, &requirements, query, semesterID); err != nil {
		return nil, fmt.Errorf("list semester requirements: %w", err)
	}
	return requirements, nil
}

// FindByID returns a requirement by identifier.
func (r *RequirementRepository) FindByID(ctx context.Context, id string) (*models.Requirement, error) {
	query := fmt.Sprintf(`SELECT %s FROM requirements r JOIN semesters s ON s.id = r.semester_id WHERE r.id = $1 LIMIT 1`, requirementColumns)
	var requirement models.Requirement
	if err := r.db.GetContext(ctx, &requirement, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find requirement: %w", err)
	}
	return &requirement, nil
}

// Create inserts a new requirement.
func (r *RequirementRepository) Create(ctx context.Context, requirement *models.Requirement) error {
	if requirement.ID == "" {
		requirement.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if requirement.CreatedAt.IsZero() {
		requirement.CreatedAt = now
	}
	requirement.UpdatedAt = now

	const query = `INSERT INTO requirements (id, semester_id, name, description, is_required, deadline, created_at, updated_at) VALUES (:id, :semester_id, :name, :description, :is_required, :deadline, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, requirement); err != nil {
		return fmt.Errorf("create requirement: %w", err)
	}
	return nil
}

// Update updates mutable fields of a requirement.
func (r *RequirementRepository) Update(ctx context.Context, requirement *models.Requirement) error {
	requirement.UpdatedAt = time.Now().UTC()
	const query = `UPDATE requirements SET name = :name, description = :description, is_required = :is_required, deadline = :deadline, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, requirement); err != nil {
		return fmt.Errorf("update requirement: %w", err)
	}
	return nil
}

// CountSubmissions reports how many submission rows reference the requirement.
func (r *RequirementRepository) CountSubmissions(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM submissions WHERE requirement_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count requirement submissions: %w", err)
	}
	return count, nil
}

// Delete removes a requirement with no submissions attached.
func (r *RequirementRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM requirements WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete requirement: %w", err)
	}
	return nil
}

// DeleteWithSubmissions removes a requirement and its submission rows in one
// transaction. Used for the forced delete path. It returns the file paths of
// the deleted submissions so the caller can clean up stored documents.
func (r *RequirementRepository) DeleteWithSubmissions(ctx context.Context, id string) ([]string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin requirement delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var filePaths []string
	if err := tx.SelectContext(ctx, &filePaths, `SELECT file_path FROM submissions WHERE requirement_id = $1`, id); err != nil {
		return nil, fmt.Errorf("collect requirement submission files: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE requirement_id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete requirement submissions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM requirements WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete requirement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return filePaths, nil
}
