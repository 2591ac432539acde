package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/etrackfac-api/internal/models"
	"github.com/noah-isme/etrackfac-api/internal/service"
	appErrors "github.com/noah-isme/etrackfac-api/pkg/errors"
	"github.com/noah-isme/etrackfac-api/pkg/response"
)

// SubmissionHandler wires faculty uploads, the checklist and document
// downloads to the submission service.
type SubmissionHandler struct {
	service   *service.SubmissionService
	semesters *service.SemesterService
}

// NewSubmissionHandler creates a new handler.
func NewSubmissionHandler(svc *service.SubmissionService, semesters *service.SemesterService) *SubmissionHandler {
	return &SubmissionHandler{service: svc, semesters: semesters}
}

// Checklist godoc
// @Summary Faculty checklist
// @Description Requirements of the semester joined with the caller's submissions; missing entries are synthesized
// @Tags Submissions
// @Produce json
// @Param semester_id query string false "Semester ID (defaults to the active semester)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /submissions/checklist [get]
func (h *SubmissionHandler) Checklist(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	semesterID := c.Query("semester_id")
	if semesterID == "" {
		semester, err := h.semesters.GetActive(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		semesterID = semester.ID
	}

	items, err := h.service.Checklist(c.Request.Context(), claims.UserID, semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil)
}

// Upload godoc
// @Summary Upload submission document
// @Description Accepts a multipart document for a requirement; allowed when the pair is missing or rejected
// @Tags Submissions
// @Accept multipart/form-data
// @Produce json
// @Param requirement_id formData string true "Requirement ID"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /submissions/upload [post]
func (h *SubmissionHandler) Upload(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requirementID := c.PostForm("requirement_id")
	if requirementID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "requirement_id is required"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	submission, err := h.service.Upload(c.Request.Context(), service.UploadRequest{
		FacultyID:     claims.UserID,
		RequirementID: requirementID,
		FileName:      fileHeader.Filename,
		ContentType:   fileHeader.Header.Get("Content-Type"),
		Size:          fileHeader.Size,
		Body:          file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, submission)
}

// Get godoc
// @Summary Get submission
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !h.canSee(claims, detail) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// DownloadToken godoc
// @Summary Issue download token
// @Description Returns a short-lived signed token for fetching the document
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /submissions/{id}/download-token [post]
func (h *SubmissionHandler) DownloadToken(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.canSee(claims, detail) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	token, expiresAt, err := h.service.DownloadToken(c.Request.Context(), detail.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"token": token, "expires_at": expiresAt}, nil)
}

// Download godoc
// @Summary Download submission document
// @Description Streams the document referenced by a signed token
// @Tags Submissions
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /submissions/download [get]
func (h *SubmissionHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	file, detail, err := h.service.OpenByToken(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.FileAttachment(file.Name(), detail.FileName)
}

// DownloadByID godoc
// @Summary Download submission document
// @Description Streams the document of a submission the caller may see
// @Tags Submissions
// @Produce octet-stream
// @Param id path string true "Submission ID"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /submissions/{id}/download [get]
func (h *SubmissionHandler) DownloadByID(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.canSee(claims, detail) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	file, _, err := h.service.Open(c.Request.Context(), detail.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.FileAttachment(file.Name(), detail.FileName)
}

// canSee limits submission visibility: faculty see their own rows, program
// chairs their department, deans and admins everything.
func (h *SubmissionHandler) canSee(claims *models.JWTClaims, detail *models.SubmissionDetail) bool {
	if claims.Roles.HasAny(models.RoleDean, models.RoleAdmin) {
		return true
	}
	if claims.Roles.Has(models.RoleProgramChair) && detail.DepartmentID != nil && *detail.DepartmentID == claims.DepartmentID {
		return true
	}
	return detail.FacultyID == claims.UserID
}
