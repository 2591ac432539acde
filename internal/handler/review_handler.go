package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/etrackfac-api/internal/models"
	"github.com/noah-isme/etrackfac-api/internal/service"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
	"github.com/noah-isme/etrackfac-api/pkg/response"
)

// ReviewHandler wires the review queue and decisions to the review service.
type ReviewHandler struct {
	service *service.ReviewService
}

// NewReviewHandler creates a new handler.
func NewReviewHandler(svc *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: svc}
}

// Queue godoc
// @Summary Review queue
// @Description Submissions in the reviewer's scope; program chairs are limited to their department
// @Tags Review
// @Produce json
// @Param status query string false "Filter by status"
// @Param semester_id query string false "Filter by semester"
// @Param faculty_id query string false "Filter by faculty member"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reviews [get]
func (h *ReviewHandler) Queue(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.SubmissionFilter{
		FacultyID:  c.Query("faculty_id"),
		SemesterID: c.Query("semester_id"),
	}
	if status := c.Query("status"); status != "" {
		s := models.SubmissionStatus(status)
		filter.Status = &s
	}

	details, err := h.service.ListQueue(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, details, nil)
}

// Review godoc
// @Summary Review submission
// @Description Approve or reject a pending submission; a decided row reports a conflict
// @Tags Review
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body service.ReviewRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reviews/{id} [post]
func (h *ReviewHandler) Review(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	detail, err := h.service.Review(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// FacultySubmissions godoc
// @Summary Submission history of one faculty member
// @Description Every submission row of the given faculty member within the caller's scope
// @Tags Review
// @Produce json
// @Param id path string true "Faculty ID"
// @Param status query string false "Filter by status"
// @Param semester_id query string false "Filter by semester"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users/{id}/submissions [get]
func (h *ReviewHandler) FacultySubmissions(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.SubmissionFilter{
		FacultyID:  c.Param("id"),
		SemesterID: c.Query("semester_id"),
	}
	if status := c.Query("status"); status != "" {
		s := models.SubmissionStatus(status)
		filter.Status = &s
	}

	details, err := h.service.ListQueue(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, details, nil)
}
