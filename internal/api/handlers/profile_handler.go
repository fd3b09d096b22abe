package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/outreach/internal/models"
	"github.com/yoockh/outreach/internal/services"
	"github.com/yoockh/outreach/internal/utils"
	"gorm.io/datatypes"
)

type ProfileHandler struct {
	svc services.ProfileService
}

func NewProfileHandler(svc services.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Me: GET /api/user-profile
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.svc.GetMe(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Title *string `json:"title,omitempty"`
	Goals *string `json:"goals,omitempty"`

	ResumeText *string `json:"resumeText,omitempty"`
	// base64 PDF, optionally as a data URL; "" removes the stored PDF
	ResumePDFBase64 *string `json:"resumePdfBase64,omitempty"`

	Skills *[]string `json:"skills,omitempty"`

	// JSONB fields (raw)
	Experience *json.RawMessage `json:"experience,omitempty"`
	Projects   *json.RawMessage `json:"projects,omitempty"`
}

// Update: POST /api/user-profile. Only fields present in the body change.
func (h *ProfileHandler) Update(c *gin.Context) {
	const op = "ProfileHandler.Update"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, op, "invalid request body", err)
		return
	}

	existing, ok := h.loadOrNew(c, userID)
	if !ok {
		return
	}

	if req.Name != nil {
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.Title != nil {
		existing.Title = strings.TrimSpace(*req.Title)
	}
	if req.Goals != nil {
		existing.Goals = *req.Goals
	}
	if req.ResumeText != nil {
		existing.ResumeText = *req.ResumeText
	}
	if req.Skills != nil {
		existing.Skills = *req.Skills
	}
	if req.Experience != nil {
		existing.Experience = datatypes.JSON(*req.Experience)
	}
	if req.Projects != nil {
		existing.Projects = datatypes.JSON(*req.Projects)
	}

	if req.ResumePDFBase64 != nil {
		if strings.TrimSpace(*req.ResumePDFBase64) == "" {
			existing.ResumePDFBase64 = ""
			existing.ResumePDFObject = ""
		} else {
			data, err := utils.DecodeBase64Payload(*req.ResumePDFBase64)
			if err != nil {
				badRequest(c, op, "resumePdfBase64 is not valid base64", err)
				return
			}
			if err := h.svc.AttachResumePDF(c.Request.Context(), existing, data); err != nil {
				writeError(c, err)
				return
			}
		}
	}

	existing.UpdatedAt = time.Now().UTC()

	if err := h.svc.Upsert(c.Request.Context(), existing); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UploadResume: POST /api/user-profile/resume (multipart field "file")
func (h *ProfileHandler) UploadResume(c *gin.Context) {
	const op = "ProfileHandler.UploadResume"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, op, "missing multipart field 'file'", err)
		return
	}

	if ext := strings.ToLower(filepath.Ext(fh.Filename)); ext != ".pdf" {
		badRequest(c, op, "only .pdf is allowed", nil)
		return
	}
	if fh.Size <= 0 || fh.Size > services.MaxResumeBytes {
		badRequest(c, op, "file too large (max 10MB)", nil)
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxResumeBytes+1))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}
	if ct := http.DetectContentType(data); ct != services.PDFContentType {
		badRequest(c, op, "invalid content type (must be pdf)", nil)
		return
	}

	existing, ok := h.loadOrNew(c, userID)
	if !ok {
		return
	}
	if err := h.svc.AttachResumePDF(c.Request.Context(), existing, data); err != nil {
		writeError(c, err)
		return
	}
	existing.UpdatedAt = time.Now().UTC()
	if err := h.svc.Upsert(c.Request.Context(), existing); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "resumePdfObject": existing.ResumePDFObject})
}

// loadOrNew returns the stored profile or a blank one for first-time users.
func (h *ProfileHandler) loadOrNew(c *gin.Context, userID string) (*models.UserProfile, bool) {
	existing, err := h.svc.GetMe(c.Request.Context(), userID)
	if err != nil {
		if utils.IsCode(err, utils.CodeNotFound) {
			return &models.UserProfile{UserID: userID}, true
		}
		writeError(c, err)
		return nil, false
	}
	return existing, true
}
