package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteCascadeCollectsSubmissionFiles(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT file_path FROM submissions WHERE requirement_id IN (SELECT id FROM requirements WHERE semester_id = $1)")).
		WithArgs("sem1").
		WillReturnRows(sqlmock.NewRows([]string{"file_path"}).
			AddRow("sem1/r1/f1_syllabus.pdf").
			AddRow("sem1/r2/f2_grades.pdf"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM submissions WHERE requirement_id IN (SELECT id FROM requirements WHERE semester_id = $1)")).
		WithArgs("sem1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM requirements WHERE semester_id = $1")).
		WithArgs("sem1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM semesters WHERE id = $1")).
		WithArgs("sem1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	filePaths, err := repo.DeleteCascade(context.Background(), "sem1")
	require.NoError(t, err)
	assert.Equal(t, []string{"sem1/r1/f1_syllabus.pdf", "sem1/r2/f2_grades.pdf"}, filePaths)
	assert.NoError(t, mock.ExpectationsWereMet())
}
