package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/etrackfac-api/internal/models"
)

// SemesterRepository provides database access for semesters.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository creates a new instance of SemesterRepository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// List returns semesters newest first.
func (r *SemesterRepository) List(ctx context.Context) ([]models.Semester, error) {
	const query = `SELECT id, name, is_active, created_at FROM semesters ORDER BY created_at DESC`
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// FindByID returns a semester by identifier.
func (r *SemesterRepository) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	const query = `SELECT id, name, is_active, created_at FROM semesters WHERE id = $1 LIMIT 1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find semester: %w", err)
	}
	return &semester, nil
}

// FindActive returns the active semester.
func (r *SemesterRepository) FindActive(ctx context.Context) (*models.Semester, error) {
	const query = `SELECT id, name, is_active, created_at FROM semesters WHERE is_active = TRUE LIMIT 1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find active semester: %w", err)
	}
	return &semester, nil
}

// ExistsByName checks name uniqueness, optionally excluding one record.
func (r *SemesterRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM semesters WHERE LOWER(name) = LOWER($1) AND id <> $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, name, excludeID); err != nil {
		return false, fmt.Errorf("check semester name: %w", err)
	}
	return exists, nil
}

// Create inserts a new semester.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	if semester.ID == "" {
		semester.ID = uuid.NewString()
	}
	if semester.CreatedAt.IsZero() {
		semester.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO semesters (id, name, is_active, created_at) VALUES (:id, :name, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, semester); err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	return nil
}

// Update updates mutable fields of a semester.
func (r *SemesterRepository) Update(ctx context.Context, semester *models.Semester) error {
	const query = `UPDATE semesters SET name = :name, is_active = :is_active WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, semester); err != nil {
		return fmt.Errorf("update semester: %w", err)
	}
	return nil
}

// SetActive marks the given semester active and deactivates the rest.
func (r *SemesterRepository) SetActive(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set active semester: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `UPDATE semesters SET is_active = FALSE WHERE is_active = TRUE`); err != nil {
		return fmt.Errorf("deactivate semesters: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE semesters SET is_active = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("activate semester: %w", err)
	}
	return tx.Commit()
}

// DeleteCascade removes a semester together with its requirements and their
// submissions in one transaction. It returns the file paths of the deleted
// submissions so the caller can clean up stored documents.
func (r *SemesterRepository) DeleteCascade(ctx context.Context, id string) ([]string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin semester delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var filePaths []string
	if err := tx.SelectContext(ctx, &filePaths, `SELECT file_path FROM submissions WHERE requirement_id IN (SELECT id FROM requirements WHERE semester_id = $1)`, id); err != nil {
		return nil, fmt.Errorf("collect semester submission files: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE requirement_id IN (SELECT id FROM requirements WHERE semester_id = $1)`, id); err != nil {
		return nil, fmt.Errorf("delete semester submissions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM requirements WHERE semester_id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete semester requirements: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM semesters WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete semester: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return filePaths, nil
}
