package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/etrackfac-api/internal/models"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
)

type semesterRepoStub struct {
	semesters      []models.Semester
	found          *models.Semester
	findErr        error
	active         *models.Semester
	activeErr      error
	nameExists     bool
	created        *models.Semester
	activatedID    string
	cascadeDeleted []string
	cascadeFiles   []string
}

func (s *semesterRepoStub) List(ctx context.Context) ([]models.Semester, error) {
	return s.semesters, nil
}

func (s *semesterRepoStub) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.found, nil
}

func (s *semesterRepoStub) FindActive(ctx context.Context) (*models.Semester, error) {
	if s.activeErr != nil {
		return nil, s.activeErr
	}
	return s.active, nil
}

func (s *semesterRepoStub) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return s.nameExists, nil
}

func (s *semesterRepoStub) Create(ctx context.Context, semester *models.Semester) error {
	semester.ID = "sem-new"
	s.created = semester
	return nil
}

func (s *semesterRepoStub) Update(ctx context.Context, semester *models.Semester) error {
	return nil
}

func (s *semesterRepoStub) SetActive(ctx context.Context, id string) error {
	s.activatedID = id
	return nil
}

func (s *semesterRepoStub) DeleteCascade(ctx context.Context, id string) ([]string, error) {
	s.cascadeDeleted = append(s.cascadeDeleted, id)
	return s.cascadeFiles, nil
}

func TestSemesterDeleteRequiresConfirmationPhrase(t *testing.T) {
	repo := &semesterRepoStub{found: &models.Semester{ID: "sem1", Name: "2026-1"}}
	svc := NewSemesterService(repo, nil, nil, nil, nil, nil)

	err := svc.Delete(context.Background(), "admin1", "sem1", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConfirmationRequired))
	assert.Equal(t, SemesterDeleteConfirmation, appErrors.FromError(err).Details["expected_confirmation"])
	assert.Empty(t, repo.cascadeDeleted)
}

func TestSemesterDeleteRejectsWrongPhrase(t *testing.T) {
	repo := &semesterRepoStub{found: &models.Semester{ID: "sem1", Name: "2026-1"}}
	svc := NewSemesterService(repo, nil, nil, nil, nil, nil)

	err := svc.Delete(context.Background(), "admin1", "sem1", "remove")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConfirmationRequired))
	assert.Empty(t, repo.cascadeDeleted)
}

func TestSemesterDeleteCascadesOnConfirmation(t *testing.T) {
	repo := &semesterRepoStub{found: &models.Semester{ID: "sem1", Name: "2026-1"}}
	audit := &auditRepoStub{}
	svc := NewSemesterService(repo, audit, nil, nil, nil, nil)

	err := svc.Delete(context.Background(), "admin1", "sem1", "Delete")
	require.NoError(t, err)
	assert.Equal(t, []string{"sem1"}, repo.cascadeDeleted)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSemesterDelete, audit.logs[0].Action)
}

func TestSemesterDeleteRemovesStoredDocuments(t *testing.T) {
	repo := &semesterRepoStub{
		found:        &models.Semester{ID: "sem1", Name: "2026-1"},
		cascadeFiles: []string{"sem1/r1/f1_syllabus.pdf", "sem1/r2/f2_grades.pdf"},
	}
	store := &storeStub{}
	svc := NewSemesterService(repo, nil, store, nil, nil, nil)

	err := svc.Delete(context.Background(), "admin1", "sem1", "delete")
	require.NoError(t, err)
	assert.Equal(t, []string{"sem1"}, repo.cascadeDeleted)
	assert.Equal(t, []string{"sem1/r1/f1_syllabus.pdf", "sem1/r2/f2_grades.pdf"}, store.deleted)
}

func TestSemesterDeleteUnknownSemester(t *testing.T) {
	repo := &semesterRepoStub{findErr: sql.ErrNoRows}
	svc := NewSemesterService(repo, nil, nil, nil, nil, nil)

	err := svc.Delete(context.Background(), "admin1", "missing", "delete")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestSemesterCreateRejectsDuplicateName(t *testing.T) {
	repo := &semesterRepoStub{nameExists: true}
	svc := NewSemesterService(repo, nil, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateSemesterRequest{Name: "2026-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Nil(t, repo.created)
}

func TestSemesterCreateActivatesWhenRequested(t *testing.T) {
	repo := &semesterRepoStub{}
	svc := NewSemesterService(repo, nil, nil, nil, nil, nil)

	semester, err := svc.Create(context.Background(), CreateSemesterRequest{Name: "2026-1", IsActive: true})
	require.NoError(t, err)
	assert.True(t, semester.IsActive)
	assert.Equal(t, "sem-new", repo.activatedID)
}

func TestGetActiveSemesterMissing(t *testing.T) {
	repo := &semesterRepoStub{activeErr: sql.ErrNoRows}
	svc := NewSemesterService(repo, nil, nil, nil, nil, nil)

	_, err := svc.GetActive(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
