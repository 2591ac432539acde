package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/etrackfac-api/internal/middleware"
	"github.com/noah-isme/etrackfac-api/internal/models"
	"github.com/noah-isme/etrackfac-api/internal/service"
)

type semesterRepoMock struct {
	found          *models.Semester
	cascadeDeleted []string
}

func (m *semesterRepoMock) List(ctx context.Context) ([]models.Semester, error) {
	return nil, nil
}

func (m *semesterRepoMock) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	return m.found, nil
}

func (m *semesterRepoMock) FindActive(ctx context.Context) (*models.Semester, error) {
	return m.found, nil
}

func (m *semesterRepoMock) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return false, nil
}

func (m *semesterRepoMock) Create(ctx context.Context, semester *models.Semester) error {
	return nil
}

func (m *semesterRepoMock) Update(ctx context.Context, semester *models.Semester) error {
	return nil
}

func (m *semesterRepoMock) SetActive(ctx context.Context, id string) error {
	return nil
}

func (m *semesterRepoMock) DeleteCascade(ctx context.Context, id string) ([]string, error) {
	m.cascadeDeleted = append(m.cascadeDeleted, id)
	return nil, nil
}

func adminContext(t *testing.T, w *httptest.ResponseRecorder, method, target string, body []byte) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID: "admin1",
		Roles:  models.RoleSet{models.RoleAdmin},
	})
	return c
}

func TestSemesterDeleteWithoutConfirmationBody(t *testing.T) {
	repo := &semesterRepoMock{found: &models.Semester{ID: "sem1", Name: "2026-1"}}
	handler := NewSemesterHandler(service.NewSemesterService(repo, nil, nil, nil, nil, nil))

	w := httptest.NewRecorder()
	c := adminContext(t, w, http.MethodDelete, "/semesters/sem1", nil)
	c.Params = gin.Params{{Key: "id", Value: "sem1"}}

	handler.Delete(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, repo.cascadeDeleted)

	var envelope struct {
		Error struct {
			Code    string                 `json:"code"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "CONFIRMATION_REQUIRED", envelope.Error.Code)
	assert.Equal(t, "delete", envelope.Error.Details["expected_confirmation"])
}

func TestSemesterDeleteWithConfirmation(t *testing.T) {
	repo := &semesterRepoMock{found: &models.Semester{ID: "sem1", Name: "2026-1"}}
	handler := NewSemesterHandler(service.NewSemesterService(repo, nil, nil, nil, nil, nil))

	w := httptest.NewRecorder()
	c := adminContext(t, w, http.MethodDelete, "/semesters/sem1", []byte(`{"confirmation":"delete"}`))
	c.Params = gin.Params{{Key: "id", Value: "sem1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"sem1"}, repo.cascadeDeleted)
}

func TestSemesterDeleteWithQueryConfirmation(t *testing.T) {
	repo := &semesterRepoMock{found: &models.Semester{ID: "sem1", Name: "2026-1"}}
	handler := NewSemesterHandler(service.NewSemesterService(repo, nil, nil, nil, nil, nil))

	w := httptest.NewRecorder()
	c := adminContext(t, w, http.MethodDelete, "/semesters/sem1?confirmation=delete", nil)
	c.Params = gin.Params{{Key: "id", Value: "sem1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"sem1"}, repo.cascadeDeleted)
}
