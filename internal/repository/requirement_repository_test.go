package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/etrackfac-api/internal/models"
)

func TestCountRequirementSubmissions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequirementRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM submissions WHERE requirement_id = $1")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountSubmissions(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBySemesterKeepsCatalogOrder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequirementRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "semester_id", "name", "description", "is_required", "deadline", "created_at", "updated_at", "semester_name"}).
		AddRow("r1", "sem1", "Syllabus", nil, true, nil, now, now, "2026-1").
		AddRow("r2", "sem1", "Grading Sheet", nil, true, nil, now.Add(time.Minute), now, "2026-1")
	mock.ExpectQuery("SELECT .* FROM requirements r JOIN semesters s ON s.id = r.semester_id WHERE r.semester_id = \\$1 ORDER BY r.created_at ASC").
		WithArgs("sem1").
		WillReturnRows(rows)

	requirements, err := repo.ListBySemester(context.Background(), "sem1")
	require.NoError(t, err)
	require.Len(t, requirements, 2)
	assert.Equal(t, "Syllabus", requirements[0].Name)
	assert.Equal(t, "Grading Sheet", requirements[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithSubmissionsRunsInTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequirementRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT file_path FROM submissions WHERE requirement_id = $1")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"file_path"}).
			AddRow("sem1/r1/f1_syllabus.pdf").
			AddRow("sem1/r1/f2_syllabus.pdf"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM submissions WHERE requirement_id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM requirements WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	filePaths, err := repo.DeleteWithSubmissions(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"sem1/r1/f1_syllabus.pdf", "sem1/r1/f2_syllabus.pdf"}, filePaths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRequirementDefaultsTimestamps(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequirementRepository(db)

	mock.ExpectExec("INSERT INTO requirements").WillReturnResult(sqlmock.NewResult(1, 1))

	requirement := &models.Requirement{SemesterID: "sem1", Name: "Syllabus", IsRequired: true}
	err := repo.Create(context.Background(), requirement)
	require.NoError(t, err)
	assert.NotEmpty(t, requirement.ID)
	assert.False(t, requirement.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
