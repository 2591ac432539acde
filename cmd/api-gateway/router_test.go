package main

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/etrackfac-api/internal/handler"
	"github.com/noah-isme/etrackfac-api/internal/service"
	"github.com/noah-isme/etrackfac-api/pkg/config"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api"}
	logr := zap.NewNop()

	authService := service.NewAuthService(nil, nil, nil, logr, service.AuthConfig{AccessTokenSecret: "secret"})
	semesterService := service.NewSemesterService(nil, nil, nil, nil, nil, logr)

	return buildRouter(cfg, logr, nil, service.NewMetricsService(), authService, apiHandlers{
		auth:          handler.NewAuthHandler(authService),
		users:         handler.NewUserHandler(service.NewUserService(nil, nil, logr)),
		departments:   handler.NewDepartmentHandler(service.NewDepartmentService(nil, logr)),
		semesters:     handler.NewSemesterHandler(semesterService),
		requirements:  handler.NewRequirementHandler(service.NewRequirementService(nil, nil, nil, nil, nil, nil, logr)),
		submissions:   handler.NewSubmissionHandler(service.NewSubmissionService(nil, nil, nil, nil, nil, nil, logr, 0, nil), semesterService),
		reviews:       handler.NewReviewHandler(service.NewReviewService(nil, nil, nil, nil, nil, logr)),
		reports:       handler.NewReportHandler(service.NewComplianceService(nil, nil, nil, nil, logr), semesterService),
		notifications: handler.NewNotificationHandler(service.NewNotificationService(nil, logr)),
	})
}

func TestRouteTable(t *testing.T) {
	r := testRouter()

	registered := make(map[string]bool)
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"POST /api/login",
		"POST /api/register",
		"POST /api/refresh",
		"POST /api/logout",
		"POST /api/change-password",
		"GET /api/user",

		"GET /api/departments",

		"GET /api/submissions/checklist",
		"POST /api/submissions/upload",
		"GET /api/submissions/download",
		"GET /api/submissions/:id",
		"GET /api/submissions/:id/download",
		"POST /api/submissions/:id/download-token",

		"GET /api/reviews",
		"POST /api/reviews/:id",

		"GET /api/compliance",
		"GET /api/reports",
		"GET /api/reports/export",

		"GET /api/semesters",
		"GET /api/semesters/active",
		"GET /api/semesters/:id",
		"POST /api/semesters",
		"PUT /api/semesters/:id",
		"POST /api/semesters/:id/activate",
		"DELETE /api/semesters/:id",

		"GET /api/admin/requirements",
		"POST /api/admin/requirements",
		"GET /api/admin/requirements/:id",
		"PUT /api/admin/requirements/:id",
		"DELETE /api/admin/requirements/:id",

		"GET /api/admin/users",
		"POST /api/admin/users",
		"GET /api/admin/users/:id",
		"PUT /api/admin/users/:id",
		"DELETE /api/admin/users/:id",
		"POST /api/admin/users/:id/approve",
		"GET /api/admin/users/:id/submissions",

		"GET /api/notifications",
		"PUT /api/notifications/:id/read",
		"PUT /api/notifications/read-all",

		"GET /health",
		"GET /ready",
		"GET /metrics",
	}
	for _, want := range expected {
		assert.True(t, registered[want], "missing route %s", want)
	}
}
