package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/etrackfac-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestFindCurrentSubmission(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "faculty_id", "requirement_id", "status", "file_path", "file_name", "remarks", "reviewer_id", "reviewed_at", "created_at", "updated_at"}).
		AddRow("s1", "f1", "r1", string(models.SubmissionPending), "sem/r1/f1_doc.pdf", "doc.pdf", nil, nil, nil, now, now)
	mock.ExpectQuery("SELECT .* FROM submissions sub WHERE sub.faculty_id = \\$1 AND sub.requirement_id = \\$2").
		WithArgs("f1", "r1").
		WillReturnRows(rows)

	submission, err := repo.FindCurrent(context.Background(), "f1", "r1")
	require.NoError(t, err)
	assert.Equal(t, "s1", submission.ID)
	assert.Equal(t, models.SubmissionPending, submission.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewOnlyLandsOnPendingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions SET status = $2, remarks = $3, reviewer_id = $4, reviewed_at = $5, updated_at = $5 WHERE id = $1 AND status = $6")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Review(context.Background(), "s1", models.SubmissionApproved, nil, "chair1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewAlreadyDecidedRowAffectsNothing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("UPDATE submissions SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	remarks := "incomplete"
	affected, err := repo.Review(context.Background(), "s1", models.SubmissionRejected, &remarks, "chair1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceClearsReviewFields(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions SET file_path = $2, file_name = $3, status = $4, remarks = NULL, reviewer_id = NULL, reviewed_at = NULL, updated_at = $5 WHERE id = $1")).
		WithArgs("s1", "sem/r1/f1_v2.pdf", "v2.pdf", string(models.SubmissionPending), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Replace(context.Background(), "s1", "sem/r1/f1_v2.pdf", "v2.pdf")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSubmission(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("INSERT INTO submissions").WillReturnResult(sqlmock.NewResult(1, 1))

	submission := &models.Submission{
		FacultyID:     "f1",
		RequirementID: "r1",
		Status:        models.SubmissionPending,
		FilePath:      "sem/r1/f1_doc.pdf",
		FileName:      "doc.pdf",
	}
	err := repo.Create(context.Background(), submission)
	require.NoError(t, err)
	assert.NotEmpty(t, submission.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
