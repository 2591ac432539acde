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

type requirementCatalogStub struct {
	requirement      *models.Requirement
	findErr          error
	submissionsCount int
	deleted          []string
	forceDeleted     []string
	filePaths        []string
	created          *models.Requirement
}

func (s *requirementCatalogStub) List(ctx context.Context, filter models.RequirementFilter) ([]models.Requirement, int, error) {
	return nil, 0, nil
}

func (s *requirementCatalogStub) ListBySemester(ctx context.Context, semesterID string) ([]models.Requirement, error) {
	return nil, nil
}

func (s *requirementCatalogStub) FindByID(ctx context.Context, id string) (*models.Requirement, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.requirement, nil
}

func (s *requirementCatalogStub) Create(ctx context.Context, requirement *models.Requirement) error {
	requirement.ID = "req-new"
	s.created = requirement
	return nil
}

func (s *requirementCatalogStub) Update(ctx context.Context, requirement *models.Requirement) error {
	return nil
}

func (s *requirementCatalogStub) CountSubmissions(ctx context.Context, id string) (int, error) {
	return s.submissionsCount, nil
}

func (s *requirementCatalogStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *requirementCatalogStub) DeleteWithSubmissions(ctx context.Context, id string) ([]string, error) {
	s.forceDeleted = append(s.forceDeleted, id)
	return s.filePaths, nil
}

type requirementSemesterStub struct {
	semester *models.Semester
	err      error
}

func (s *requirementSemesterStub) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.semester, nil
}

func TestRequirementDeleteGuardedBySubmissions(t *testing.T) {
	repo := &requirementCatalogStub{
		requirement:      &models.Requirement{ID: "r1", SemesterID: "sem1", Name: "Syllabus"},
		submissionsCount: 4,
	}
	svc := NewRequirementService(repo, &requirementSemesterStub{}, nil, nil, nil, nil, nil)

	err := svc.Delete(context.Background(), "admin1", "r1", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConfirmationRequired))
	assert.Equal(t, 4, appErrors.FromError(err).Details["submissions_count"])
	assert.Empty(t, repo.deleted)
	assert.Empty(t, repo.forceDeleted)
}

func TestRequirementForceDeleteRemovesSubmissions(t *testing.T) {
	repo := &requirementCatalogStub{
		requirement:      &models.Requirement{ID: "r1", SemesterID: "sem1", Name: "Syllabus"},
		submissionsCount: 4,
	}
	audit := &auditRepoStub{}
	svc := NewRequirementService(repo, &requirementSemesterStub{}, audit, nil, nil, nil, nil)

	err := svc.Delete(context.Background(), "admin1", "r1", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, repo.forceDeleted)
	assert.Empty(t, repo.deleted)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionRequirementDelete, audit.logs[0].Action)
}

func TestRequirementForceDeleteRemovesStoredDocuments(t *testing.T) {
	repo := &requirementCatalogStub{
		requirement:      &models.Requirement{ID: "r1", SemesterID: "sem1", Name: "Syllabus"},
		submissionsCount: 2,
		filePaths:        []string{"sem1/r1/f1_syllabus.pdf", "sem1/r1/f2_syllabus.pdf"},
	}
	store := &storeStub{}
	svc := NewRequirementService(repo, &requirementSemesterStub{}, nil, store, nil, nil, nil)

	err := svc.Delete(context.Background(), "admin1", "r1", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, repo.forceDeleted)
	assert.Equal(t, []string{"sem1/r1/f1_syllabus.pdf", "sem1/r1/f2_syllabus.pdf"}, store.deleted)
}

func TestRequirementDeleteWithoutSubmissions(t *testing.T) {
	repo := &requirementCatalogStub{
		requirement: &models.Requirement{ID: "r1", SemesterID: "sem1", Name: "Syllabus"},
	}
	svc := NewRequirementService(repo, &requirementSemesterStub{}, nil, nil, nil, nil, nil)

	err := svc.Delete(context.Background(), "admin1", "r1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, repo.deleted)
	assert.Empty(t, repo.forceDeleted)
}

func TestRequirementCreateDefaultsToRequired(t *testing.T) {
	repo := &requirementCatalogStub{}
	semesters := &requirementSemesterStub{semester: &models.Semester{ID: "sem1", Name: "2026-1"}}
	svc := NewRequirementService(repo, semesters, nil, nil, nil, nil, nil)

	requirement, err := svc.Create(context.Background(), CreateRequirementRequest{SemesterID: "sem1", Name: "Syllabus"})
	require.NoError(t, err)
	assert.True(t, requirement.IsRequired)
}

func TestRequirementCreateRejectsUnknownSemester(t *testing.T) {
	repo := &requirementCatalogStub{}
	semesters := &requirementSemesterStub{err: sql.ErrNoRows}
	svc := NewRequirementService(repo, semesters, nil, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateRequirementRequest{SemesterID: "ghost", Name: "Syllabus"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Nil(t, repo.created)
}
