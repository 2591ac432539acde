package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/etrackfac-api/internal/middleware"
	"github.com/noah-isme/etrackfac-api/internal/models"
	"github.com/noah-isme/etrackfac-api/internal/service"
)

type submissionRepoMock struct {
	detail *models.SubmissionDetail
}

func (m *submissionRepoMock) FindCurrent(ctx context.Context, facultyID, requirementID string) (*models.Submission, error) {
	return nil, nil
}

func (m *submissionRepoMock) FindDetailByID(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	return m.detail, nil
}

func (m *submissionRepoMock) ListByFaculty(ctx context.Context, facultyID, semesterID string) ([]models.Submission, error) {
	return nil, nil
}

func (m *submissionRepoMock) Create(ctx context.Context, submission *models.Submission) error {
	return nil
}

func (m *submissionRepoMock) Replace(ctx context.Context, id, filePath, fileName string) error {
	return nil
}

type documentStoreMock struct {
	root   string
	opened []string
}

func (m *documentStoreMock) SaveStream(filename string, r io.Reader) (string, error) {
	return filename, nil
}

func (m *documentStoreMock) Open(filename string) (*os.File, error) {
	m.opened = append(m.opened, filename)
	return os.Open(filepath.Join(m.root, filename))
}

func (m *documentStoreMock) Delete(filename string) error {
	return nil
}

func claimsContext(t *testing.T, w *httptest.ResponseRecorder, claims *models.JWTClaims, method, target string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, claims)
	return c
}

func approvedDetail() *models.SubmissionDetail {
	dept := "dept1"
	return &models.SubmissionDetail{
		Submission: models.Submission{
			ID:            "sub1",
			FacultyID:     "f1",
			RequirementID: "r1",
			Status:        models.SubmissionApproved,
			FilePath:      "f1_syllabus.pdf",
			FileName:      "syllabus.pdf",
		},
		DepartmentID: &dept,
	}
}

func TestDownloadByIDStreamsOwnDocument(t *testing.T) {
	store := &documentStoreMock{root: t.TempDir()}
	require.NoError(t, os.WriteFile(filepath.Join(store.root, "f1_syllabus.pdf"), []byte("document body"), 0o644))

	repo := &submissionRepoMock{detail: approvedDetail()}
	svc := service.NewSubmissionService(repo, nil, nil, store, nil, nil, nil, 0, nil)
	handler := NewSubmissionHandler(svc, nil)

	w := httptest.NewRecorder()
	c := claimsContext(t, w, &models.JWTClaims{UserID: "f1", Roles: models.RoleSet{models.RoleFaculty}}, http.MethodGet, "/submissions/sub1/download")
	c.Params = gin.Params{{Key: "id", Value: "sub1"}}

	handler.DownloadByID(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "document body", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "syllabus.pdf")
	assert.Equal(t, []string{"f1_syllabus.pdf"}, store.opened)
}

func TestDownloadByIDForbiddenForOtherFaculty(t *testing.T) {
	store := &documentStoreMock{root: t.TempDir()}
	repo := &submissionRepoMock{detail: approvedDetail()}
	svc := service.NewSubmissionService(repo, nil, nil, store, nil, nil, nil, 0, nil)
	handler := NewSubmissionHandler(svc, nil)

	w := httptest.NewRecorder()
	c := claimsContext(t, w, &models.JWTClaims{UserID: "f2", Roles: models.RoleSet{models.RoleFaculty}}, http.MethodGet, "/submissions/sub1/download")
	c.Params = gin.Params{{Key: "id", Value: "sub1"}}

	handler.DownloadByID(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, store.opened)
}
