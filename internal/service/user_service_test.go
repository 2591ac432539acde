package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/etrackfac-api/internal/models"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
)

type userRepoStub struct {
	user             *models.User
	userByEmail      *models.User
	submissionsCount int
	approved         []string
	deleted          []string
	created          *models.User
	auditLogs        []*models.AuditLog
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.user == nil {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return s.userByEmail, nil
}

func (s *userRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return nil, 0, nil
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	s.created = user
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return nil
}

func (s *userRepoStub) Approve(ctx context.Context, id string) error {
	s.approved = append(s.approved, id)
	return nil
}

func (s *userRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *userRepoStub) CountSubmissions(ctx context.Context, id string) (int, error) {
	return s.submissionsCount, nil
}

func (s *userRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.auditLogs = append(s.auditLogs, log)
	return nil
}

func TestApproveActivatesPendingUser(t *testing.T) {
	repo := &userRepoStub{user: &models.User{ID: "u1", Status: models.UserStatusPending}}
	svc := NewUserService(repo, nil, nil)

	user, err := svc.Approve(context.Background(), "admin1", "u1")
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, user.Status)
	assert.Equal(t, []string{"u1"}, repo.approved)
}

func TestApproveAlreadyActiveConflicts(t *testing.T) {
	repo := &userRepoStub{user: &models.User{ID: "u1", Status: models.UserStatusActive}}
	svc := NewUserService(repo, nil, nil)

	_, err := svc.Approve(context.Background(), "admin1", "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Empty(t, repo.approved)
}

func TestAdminCreateSkipsApproval(t *testing.T) {
	repo := &userRepoStub{}
	svc := NewUserService(repo, nil, nil)

	user, err := svc.Create(context.Background(), "admin1", CreateUserRequest{
		FullName: "Leo Ramos",
		Email:    "leo@univ.edu",
		Password: "secret123",
		Roles:    []string{"PROGRAM_CHAIR", "FACULTY"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, user.Status)
	assert.True(t, user.Roles.Has(models.RoleProgramChair))
	assert.True(t, user.Roles.Has(models.RoleFaculty))
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	repo := &userRepoStub{}
	svc := NewUserService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "admin1", CreateUserRequest{
		FullName: "Leo Ramos",
		Email:    "leo@univ.edu",
		Password: "secret123",
		Roles:    []string{"SUPERUSER"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Nil(t, repo.created)
}

func TestDeleteRefusedWithSubmissionHistory(t *testing.T) {
	repo := &userRepoStub{
		user:             &models.User{ID: "u1", Status: models.UserStatusActive},
		submissionsCount: 7,
	}
	svc := NewUserService(repo, nil, nil)

	err := svc.Delete(context.Background(), "admin1", "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, 7, appErrors.FromError(err).Details["submissions_count"])
	assert.Empty(t, repo.deleted)
}

func TestDeleteOwnAccountForbidden(t *testing.T) {
	repo := &userRepoStub{user: &models.User{ID: "admin1"}}
	svc := NewUserService(repo, nil, nil)

	err := svc.Delete(context.Background(), "admin1", "admin1")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Empty(t, repo.deleted)
}

func TestDeleteUserWithoutSubmissions(t *testing.T) {
	repo := &userRepoStub{user: &models.User{ID: "u1"}}
	svc := NewUserService(repo, nil, nil)

	err := svc.Delete(context.Background(), "admin1", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, repo.deleted)
}
