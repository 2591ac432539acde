package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/etrackfac-api/internal/models"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
)

type reviewRepoStub struct {
	detail         *models.SubmissionDetail
	detailErr      error
	listed         []models.SubmissionDetail
	listErr        error
	listFilter     models.SubmissionFilter
	reviewAffected int64
	reviewErr      error
	reviewedStatus models.SubmissionStatus
	reviewCalls    int
}

func (s *reviewRepoStub) FindDetailByID(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	return s.detail, nil
}

func (s *reviewRepoStub) List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, error) {
	s.listFilter = filter
	return s.listed, s.listErr
}

func (s *reviewRepoStub) Review(ctx context.Context, id string, status models.SubmissionStatus, remarks *string, reviewerID string, reviewedAt time.Time) (int64, error) {
	s.reviewCalls++
	s.reviewedStatus = status
	return s.reviewAffected, s.reviewErr
}

type auditRepoStub struct {
	logs []*models.AuditLog
	err  error
}

func (s *auditRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return s.err
}

func chairClaims(departmentID string) *models.JWTClaims {
	return &models.JWTClaims{
		UserID:       "chair1",
		Roles:        models.RoleSet{models.RoleProgramChair},
		DepartmentID: departmentID,
	}
}

func pendingDetail(departmentID string) *models.SubmissionDetail {
	dept := departmentID
	return &models.SubmissionDetail{
		Submission: models.Submission{
			ID:            "s1",
			FacultyID:     "f1",
			RequirementID: "r1",
			Status:        models.SubmissionPending,
		},
		FacultyName:     "Jane Cruz",
		DepartmentID:    &dept,
		RequirementName: "Syllabus",
	}
}

func TestReviewApprovesPendingSubmission(t *testing.T) {
	repo := &reviewRepoStub{detail: pendingDetail("dept1"), reviewAffected: 1}
	audit := &auditRepoStub{}
	svc := NewReviewService(repo, audit, nil, nil, nil, nil)

	detail, err := svc.Review(context.Background(), chairClaims("dept1"), "s1", ReviewRequest{Status: models.SubmissionApproved})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, detail.Status)
	require.NotNil(t, detail.ReviewerID)
	assert.Equal(t, "chair1", *detail.ReviewerID)
	assert.NotNil(t, detail.ReviewedAt)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSubmissionReview, audit.logs[0].Action)
}

func TestReviewAlreadyDecidedReportsConflict(t *testing.T) {
	detail := pendingDetail("dept1")
	detail.Status = models.SubmissionApproved
	repo := &reviewRepoStub{detail: detail, reviewAffected: 0}
	svc := NewReviewService(repo, nil, nil, nil, nil, nil)

	_, err := svc.Review(context.Background(), chairClaims("dept1"), "s1", ReviewRequest{Status: models.SubmissionApproved})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrStaleTransition))
	appErr := appErrors.FromError(err)
	assert.Equal(t, models.SubmissionApproved, appErr.Details["status"])
}

func TestReviewRejectRequiresRemarks(t *testing.T) {
	repo := &reviewRepoStub{detail: pendingDetail("dept1"), reviewAffected: 1}
	svc := NewReviewService(repo, nil, nil, nil, nil, nil)

	_, err := svc.Review(context.Background(), chairClaims("dept1"), "s1", ReviewRequest{Status: models.SubmissionRejected})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, repo.reviewCalls)
}

func TestReviewOutsideDepartmentForbidden(t *testing.T) {
	repo := &reviewRepoStub{detail: pendingDetail("dept2"), reviewAffected: 1}
	svc := NewReviewService(repo, nil, nil, nil, nil, nil)

	_, err := svc.Review(context.Background(), chairClaims("dept1"), "s1", ReviewRequest{Status: models.SubmissionApproved})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.Zero(t, repo.reviewCalls)
}

func TestReviewDeanCrossesDepartments(t *testing.T) {
	repo := &reviewRepoStub{detail: pendingDetail("dept2"), reviewAffected: 1}
	claims := &models.JWTClaims{
		UserID:       "dean1",
		Roles:        models.RoleSet{models.RoleDean},
		DepartmentID: "dept1",
	}
	svc := NewReviewService(repo, nil, nil, nil, nil, nil)

	detail, err := svc.Review(context.Background(), claims, "s1", ReviewRequest{Status: models.SubmissionApproved})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, detail.Status)
}

func TestReviewUnknownSubmission(t *testing.T) {
	repo := &reviewRepoStub{detailErr: sql.ErrNoRows}
	svc := NewReviewService(repo, nil, nil, nil, nil, nil)

	_, err := svc.Review(context.Background(), chairClaims("dept1"), "missing", ReviewRequest{Status: models.SubmissionApproved})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestListQueuePinsChairToOwnDepartment(t *testing.T) {
	repo := &reviewRepoStub{listed: []models.SubmissionDetail{*pendingDetail("dept1")}}
	svc := NewReviewService(repo, nil, nil, nil, nil, nil)

	details, err := svc.ListQueue(context.Background(), chairClaims("dept1"), models.SubmissionFilter{DepartmentID: "dept2"})
	require.NoError(t, err)
	assert.Len(t, details, 1)
	assert.Equal(t, "dept1", repo.listFilter.DepartmentID)
}

func TestListQueueRefusesFaculty(t *testing.T) {
	svc := NewReviewService(&reviewRepoStub{}, nil, nil, nil, nil, nil)

	claims := &models.JWTClaims{UserID: "f1", Roles: models.RoleSet{models.RoleFaculty}}
	_, err := svc.ListQueue(context.Background(), claims, models.SubmissionFilter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}
