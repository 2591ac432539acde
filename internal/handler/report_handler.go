package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/etrackfac-api/internal/service"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
	"github.com/noah-isme/etrackfac-api/pkg/response"
)

// ReportHandler serves compliance aggregates and exports.
type ReportHandler struct {
	service   *service.ComplianceService
	semesters *service.SemesterService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ComplianceService, semesters *service.SemesterService) *ReportHandler {
	return &ReportHandler{service: svc, semesters: semesters}
}

// Matrix godoc
// @Summary Compliance matrix
// @Description Faculty x requirement grid; missing cells are synthesized
// @Tags Reports
// @Produce json
// @Param semester_id query string false "Semester ID (defaults to the active semester)"
// @Param department_id query string false "Department filter (ignored for program chairs)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /compliance [get]
func (h *ReportHandler) Matrix(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	semesterID, err := h.resolveSemester(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	matrix, err := h.service.Matrix(c.Request.Context(), claims, semesterID, c.Query("department_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, matrix, nil)
}

// Summary godoc
// @Summary Department compliance summary
// @Description Aggregated submission counts per department; only ledger rows contribute
// @Tags Reports
// @Produce json
// @Param semester_id query string false "Semester ID (defaults to the active semester)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	semesterID, err := h.resolveSemester(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summaries, err := h.service.DepartmentSummaries(c.Request.Context(), semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summaries, nil)
}

// Export godoc
// @Summary Export department summary
// @Description Renders the department summary as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param semester_id query string false "Semester ID (defaults to the active semester)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	semesterID, err := h.resolveSemester(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	payload, contentType, err := h.service.Export(c.Request.Context(), semesterID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	ext := "csv"
	if contentType == "application/pdf" {
		ext = "pdf"
	}
	filename := fmt.Sprintf("compliance-summary-%s.%s", time.Now().UTC().Format("2006-01-02"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

func (h *ReportHandler) resolveSemester(c *gin.Context) (string, error) {
	if semesterID := c.Query("semester_id"); semesterID != "" {
		return semesterID, nil
	}
	semester, err := h.semesters.GetActive(c.Request.Context())
	if err != nil {
		return "", err
	}
	return semester.ID, nil
}
