package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/etrackfac-api/internal/models"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
)

type submissionRepoStub struct {
	current     *models.Submission
	currentErr  error
	byFaculty   []models.Submission
	created     *models.Submission
	replacedID  string
	replacePath string
}

func (s *submissionRepoStub) FindCurrent(ctx context.Context, facultyID, requirementID string) (*models.Submission, error) {
	if s.currentErr != nil {
		return nil, s.currentErr
	}
	return s.current, nil
}

func (s *submissionRepoStub) FindDetailByID(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	return nil, sql.ErrNoRows
}

func (s *submissionRepoStub) ListByFaculty(ctx context.Context, facultyID, semesterID string) ([]models.Submission, error) {
	return s.byFaculty, nil
}

func (s *submissionRepoStub) Create(ctx context.Context, submission *models.Submission) error {
	s.created = submission
	return nil
}

func (s *submissionRepoStub) Replace(ctx context.Context, id, filePath, fileName string) error {
	s.replacedID = id
	s.replacePath = filePath
	return nil
}

type requirementRepoStub struct {
	requirement *models.Requirement
	catalog     []models.Requirement
	findErr     error
}

func (s *requirementRepoStub) FindByID(ctx context.Context, id string) (*models.Requirement, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.requirement, nil
}

func (s *requirementRepoStub) ListBySemester(ctx context.Context, semesterID string) ([]models.Requirement, error) {
	return s.catalog, nil
}

type storeStub struct {
	saved   []string
	deleted []string
	saveErr error
}

func (s *storeStub) SaveStream(filename string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.saved = append(s.saved, filename)
	io.Copy(io.Discard, r) //nolint:errcheck
	return filename, nil
}

func (s *storeStub) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (s *storeStub) Delete(filename string) error {
	s.deleted = append(s.deleted, filename)
	return nil
}

func newUploadRequest() UploadRequest {
	return UploadRequest{
		FacultyID:     "f1",
		RequirementID: "r1",
		FileName:      "syllabus.pdf",
		ContentType:   "application/pdf",
		Size:          1024,
		Body:          strings.NewReader("content"),
	}
}

func syllabusRequirement() *models.Requirement {
	return &models.Requirement{ID: "r1", SemesterID: "sem1", Name: "Syllabus", IsRequired: true}
}

func TestChecklistSynthesizesMissingEntries(t *testing.T) {
	requirements := &requirementRepoStub{catalog: []models.Requirement{
		{ID: "r1", SemesterID: "sem1", Name: "Syllabus", IsRequired: true},
		{ID: "r2", SemesterID: "sem1", Name: "Grading Sheet", IsRequired: true},
		{ID: "r3", SemesterID: "sem1", Name: "Exam Bank", IsRequired: false},
	}}
	repo := &submissionRepoStub{byFaculty: []models.Submission{
		{ID: "s1", FacultyID: "f1", RequirementID: "r2", Status: models.SubmissionApproved, FilePath: "sem1/r2/f1_g.pdf"},
	}}
	svc := NewSubmissionService(repo, requirements, nil, &storeStub{}, nil, nil, nil, 0, nil)

	items, err := svc.Checklist(context.Background(), "f1", "sem1")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "r1", items[0].RequirementID)
	assert.Equal(t, models.SubmissionMissing, items[0].Status)
	assert.Nil(t, items[0].SubmissionID)

	assert.Equal(t, "r2", items[1].RequirementID)
	assert.Equal(t, models.SubmissionApproved, items[1].Status)
	require.NotNil(t, items[1].SubmissionID)
	assert.Equal(t, "s1", *items[1].SubmissionID)

	assert.Equal(t, models.SubmissionMissing, items[2].Status)
}

func TestUploadNewPairCreatesPendingRow(t *testing.T) {
	repo := &submissionRepoStub{currentErr: sql.ErrNoRows}
	requirements := &requirementRepoStub{requirement: syllabusRequirement()}
	store := &storeStub{}
	svc := NewSubmissionService(repo, requirements, nil, store, nil, nil, nil, 0, nil)

	submission, err := svc.Upload(context.Background(), newUploadRequest())
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, models.SubmissionPending, submission.Status)
	assert.Equal(t, "sem1/r1/f1_syllabus.pdf", submission.FilePath)
	assert.Len(t, store.saved, 1)
}

func TestUploadRefusedWhilePending(t *testing.T) {
	repo := &submissionRepoStub{current: &models.Submission{ID: "s1", Status: models.SubmissionPending}}
	requirements := &requirementRepoStub{requirement: syllabusRequirement()}
	svc := NewSubmissionService(repo, requirements, nil, &storeStub{}, nil, nil, nil, 0, nil)

	_, err := svc.Upload(context.Background(), newUploadRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, models.SubmissionPending, appErrors.FromError(err).Details["status"])
}

func TestUploadRefusedWhenApproved(t *testing.T) {
	repo := &submissionRepoStub{current: &models.Submission{ID: "s1", Status: models.SubmissionApproved}}
	requirements := &requirementRepoStub{requirement: syllabusRequirement()}
	svc := NewSubmissionService(repo, requirements, nil, &storeStub{}, nil, nil, nil, 0, nil)

	_, err := svc.Upload(context.Background(), newUploadRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestUploadAfterRejectionReplacesRow(t *testing.T) {
	remarks := "wrong template"
	reviewer := "chair1"
	repo := &submissionRepoStub{current: &models.Submission{
		ID:            "s1",
		FacultyID:     "f1",
		RequirementID: "r1",
		Status:        models.SubmissionRejected,
		FilePath:      "sem1/r1/f1_old.pdf",
		Remarks:       &remarks,
		ReviewerID:    &reviewer,
	}}
	requirements := &requirementRepoStub{requirement: syllabusRequirement()}
	store := &storeStub{}
	svc := NewSubmissionService(repo, requirements, nil, store, nil, nil, nil, 0, nil)

	submission, err := svc.Upload(context.Background(), newUploadRequest())
	require.NoError(t, err)
	assert.Equal(t, "s1", repo.replacedID)
	assert.Equal(t, models.SubmissionPending, submission.Status)
	assert.Nil(t, submission.Remarks)
	assert.Nil(t, submission.ReviewerID)
	assert.Equal(t, []string{"sem1/r1/f1_old.pdf"}, store.deleted)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	repo := &submissionRepoStub{currentErr: sql.ErrNoRows}
	requirements := &requirementRepoStub{requirement: syllabusRequirement()}
	svc := NewSubmissionService(repo, requirements, nil, &storeStub{}, nil, nil, nil, 512, nil)

	req := newUploadRequest()
	req.Size = 2048
	_, err := svc.Upload(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, int64(512), appErrors.FromError(err).Details["max_file_size_bytes"])
}

func TestUploadRejectsDisallowedMIME(t *testing.T) {
	repo := &submissionRepoStub{currentErr: sql.ErrNoRows}
	requirements := &requirementRepoStub{requirement: syllabusRequirement()}
	svc := NewSubmissionService(repo, requirements, nil, &storeStub{}, nil, nil, nil, 0, []string{"application/pdf"})

	req := newUploadRequest()
	req.ContentType = "application/x-msdownload"
	_, err := svc.Upload(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestUploadUnknownRequirement(t *testing.T) {
	repo := &submissionRepoStub{}
	requirements := &requirementRepoStub{findErr: sql.ErrNoRows}
	svc := NewSubmissionService(repo, requirements, nil, &storeStub{}, nil, nil, nil, 0, nil)

	_, err := svc.Upload(context.Background(), newUploadRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
