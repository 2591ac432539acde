package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/etrackfac-api/internal/middleware"
	"github.com/noah-isme/etrackfac-api/internal/models"
	"github.com/noah-isme/etrackfac-api/internal/service"
)

type reviewRepoMock struct {
	detail     *models.SubmissionDetail
	affected   int64
	listFilter models.SubmissionFilter
}

func (m *reviewRepoMock) FindDetailByID(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	return m.detail, nil
}

func (m *reviewRepoMock) List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, error) {
	m.listFilter = filter
	return []models.SubmissionDetail{*m.detail}, nil
}

func (m *reviewRepoMock) Review(ctx context.Context, id string, status models.SubmissionStatus, remarks *string, reviewerID string, reviewedAt time.Time) (int64, error) {
	return m.affected, nil
}

func deanContext(t *testing.T, w *httptest.ResponseRecorder, method, target string, body []byte) *gin.Context {
	t.Helper()
	c := adminContext(t, w, method, target, body)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID: "dean1",
		Roles:  models.RoleSet{models.RoleDean},
	})
	return c
}

func reviewDetail(status models.SubmissionStatus) *models.SubmissionDetail {
	dept := "dept1"
	return &models.SubmissionDetail{
		Submission: models.Submission{
			ID:            "s1",
			FacultyID:     "f1",
			RequirementID: "r1",
			Status:        status,
		},
		FacultyName:     "Jane Cruz",
		DepartmentID:    &dept,
		RequirementName: "Syllabus",
	}
}

func TestReviewHandlerApprove(t *testing.T) {
	repo := &reviewRepoMock{detail: reviewDetail(models.SubmissionPending), affected: 1}
	handler := NewReviewHandler(service.NewReviewService(repo, nil, nil, nil, nil, nil))

	w := httptest.NewRecorder()
	c := deanContext(t, w, http.MethodPost, "/reviews/s1", []byte(`{"status":"approved"}`))
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Review(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "approved", envelope.Data.Status)
}

func TestReviewHandlerStaleDecisionConflicts(t *testing.T) {
	repo := &reviewRepoMock{detail: reviewDetail(models.SubmissionApproved), affected: 0}
	handler := NewReviewHandler(service.NewReviewService(repo, nil, nil, nil, nil, nil))

	w := httptest.NewRecorder()
	c := deanContext(t, w, http.MethodPost, "/reviews/s1", []byte(`{"status":"rejected","remarks":"late"}`))
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Review(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope struct {
		Error struct {
			Code    string                 `json:"code"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "STALE_TRANSITION", envelope.Error.Code)
	assert.Equal(t, "approved", envelope.Error.Details["status"])
}

func TestFacultySubmissionsPinsFacultyFilter(t *testing.T) {
	repo := &reviewRepoMock{detail: reviewDetail(models.SubmissionApproved)}
	handler := NewReviewHandler(service.NewReviewService(repo, nil, nil, nil, nil, nil))

	w := httptest.NewRecorder()
	c := deanContext(t, w, http.MethodGet, "/admin/users/f1/submissions?status=approved", nil)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}

	handler.FacultySubmissions(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "f1", repo.listFilter.FacultyID)
	require.NotNil(t, repo.listFilter.Status)
	assert.Equal(t, models.SubmissionApproved, *repo.listFilter.Status)
}

func TestReviewHandlerRejectsMalformedBody(t *testing.T) {
	repo := &reviewRepoMock{detail: reviewDetail(models.SubmissionPending), affected: 1}
	handler := NewReviewHandler(service.NewReviewService(repo, nil, nil, nil, nil, nil))

	w := httptest.NewRecorder()
	c := deanContext(t, w, http.MethodPost, "/reviews/s1", []byte(`{"status":`))
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Review(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
