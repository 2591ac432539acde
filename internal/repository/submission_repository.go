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

// SubmissionRepository provides database access for the submission ledger.
// The ledger holds at most one current row per (faculty, requirement) pair;
// re-uploads overwrite the row rather than appending history.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository creates a new instance of SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `sub.id, sub.faculty_id, sub.requirement_id, sub.status, sub.file_path, sub.file_name, sub.remarks, sub.reviewer_id, sub.reviewed_at, sub.created_at, sub.updated_at`

const submissionDetailColumns = submissionColumns + `, u.full_name AS faculty_name, u.department_id AS department_id, d.name AS department_name, r.name AS requirement_name`

const submissionDetailJoins = `FROM submissions sub
JOIN users u ON u.id = sub.faculty_id
LEFT JOIN departments d ON d.id = u.department_id
JOIN requirements r ON r.id = sub.requirement_id`

// FindCurrent returns the current row for a (faculty, requirement) pair, or
// sql.ErrNoRows when the pair has never been submitted.
func (r *SubmissionRepository) FindCurrent(ctx context.Context, facultyID, requirementID string) (*models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions sub WHERE sub.faculty_id = $1 AND sub.requirement_id = $2 LIMIT 1`, submissionColumns)
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, facultyID, requirementID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find current submission: %w", err)
	}
	return &submission, nil
}

// FindDetailByID returns a submission joined with faculty, department and
// requirement names.
func (r *SubmissionRepository) FindDetailByID(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE sub.id = $1 LIMIT 1`, submissionDetailColumns, submissionDetailJoins)
	var detail models.SubmissionDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find submission detail: %w", err)
	}
	return &detail, nil
}

// List returns detail rows for the review queue and compliance folds. The
// filter narrows by department, faculty, status or semester; results are
// ordered newest first.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, error) {
	where := `WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("u.department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("sub.faculty_id = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("sub.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("r.semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if len(conditions) > 0 {
		where += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY sub.updated_at DESC`, submissionDetailColumns, submissionDetailJoins, where)

	var details []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return details, nil
}

// ListByFaculty returns all current rows belonging to one faculty member,
// restricted to requirements of the given semester.
func (r *SubmissionRepository) ListByFaculty(ctx context.Context, facultyID, semesterID string) ([]models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions sub JOIN requirements r ON r.id = sub.requirement_id WHERE sub.faculty_id = $1 AND r.semester_id = $2`, submissionColumns)
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, facultyID, semesterID); err != nil {
		return nil, fmt.Errorf("list faculty submissions: %w", err)
	}
	return submissions, nil
}

// Create inserts a fresh ledger row in pending state.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = now
	}
	submission.UpdatedAt = now

	const query = `INSERT INTO submissions (id, faculty_id, requirement_id, status, file_path, file_name, remarks, reviewer_id, reviewed_at, created_at, updated_at) VALUES (:id, :faculty_id, :requirement_id, :status, :file_path, :file_name, :remarks, :reviewer_id, :reviewed_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// Replace overwrites a rejected row for a re-upload: new file, status back
// to pending, review fields cleared.
func (r *SubmissionRepository) Replace(ctx context.Context, id, filePath, fileName string) error {
	const query = `UPDATE submissions SET file_path = $2, file_name = $3, status = $4, remarks = NULL, reviewer_id = NULL, reviewed_at = NULL, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, filePath, fileName, models.SubmissionPending, time.Now().UTC()); err != nil {
		return fmt.Errorf("replace submission: %w", err)
	}
	return nil
}

// Review applies an approve or reject decision, guarded so it only lands on
// a row that is still pending. Returns the number of rows affected: zero
// means the row was already decided (or gone) and the caller reports a
// conflict.
func (r *SubmissionRepository) Review(ctx context.Context, id string, status models.SubmissionStatus, remarks *string, reviewerID string, reviewedAt time.Time) (int64, error) {
	const query = `UPDATE submissions SET status = $2, remarks = $3, reviewer_id = $4, reviewed_at = $5, updated_at = $5 WHERE id = $1 AND status = $6`
	result, err := r.db.ExecContext(ctx, query, id, status, remarks, reviewerID, reviewedAt, models.SubmissionPending)
	if err != nil {
		return 0, fmt.Errorf("review submission: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("review submission rows affected: %w", err)
	}
	return affected, nil
}
