package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/etrackfac-api/internal/models"
	"github.com/noah-isme/etrackfac-api/internal/service"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
	"github.com/noah-isme/etrackfac-api/pkg/response"
)

// RequirementHandler wires HTTP endpoints to the requirement service.
type RequirementHandler struct {
	service *service.RequirementService
}

// NewRequirementHandler creates a new handler.
func NewRequirementHandler(svc *service.RequirementService) *RequirementHandler {
	return &RequirementHandler{service: svc}
}

// List godoc
// @Summary List requirements
// @Description List requirements with submission counts
// @Tags Requirements
// @Produce json
// @Param semester_id query string false "Filter by semester"
// @Param search query string false "Search by name"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/requirements [get]
func (h *RequirementHandler) List(c *gin.Context) {
	filter := models.RequirementFilter{
		SemesterID: c.Query("semester_id"),
		Search:     c.Query("search"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))

	requirements, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requirements, pagination)
}

// Get godoc
// @Summary Get requirement
// @Tags Requirements
// @Produce json
// @Param id path string true "Requirement ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/requirements/{id} [get]
func (h *RequirementHandler) Get(c *gin.Context) {
	requirement, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requirement, nil)
}

// Create godoc
// @Summary Create requirement
// @Tags Requirements
// @Accept json
// @Produce json
// @Param payload body service.CreateRequirementRequest true "Requirement payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/requirements [post]
func (h *RequirementHandler) Create(c *gin.Context) {
	var req service.CreateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid requirement payload"))
		return
	}

	requirement, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, requirement)
}

// Update godoc
// @Summary Update requirement
// @Tags Requirements
// @Accept json
// @Produce json
// @Param id path string true "Requirement ID"
// @Param payload body service.UpdateRequirementRequest true "Requirement payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/requirements/{id} [put]
func (h *RequirementHandler) Update(c *gin.Context) {
	var req service.UpdateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid requirement payload"))
		return
	}

	requirement, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requirement, nil)
}

// Delete godoc
// @Summary Delete requirement
// @Description Delete a requirement; when submissions exist the call reports a conflict with the count unless force=true
// @Tags Requirements
// @Produce json
// @Param id path string true "Requirement ID"
// @Param force query bool false "Delete submissions along with the requirement"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/requirements/{id} [delete]
func (h *RequirementHandler) Delete(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id"), force); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
