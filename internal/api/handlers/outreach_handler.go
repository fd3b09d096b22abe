package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/outreach/internal/models"
	"github.com/yoockh/outreach/internal/services"
)

type OutreachHandler struct {
	svc services.OutreachService
}

func NewOutreachHandler(svc services.OutreachService) *OutreachHandler {
	return &OutreachHandler{svc: svc}
}

type GenerateOutreachRequest struct {
	JobData        models.JobData `json:"jobData"`
	OutreachType   string         `json:"outreachType"`
	MessageType    string         `json:"messageType"`
	ContactID      string         `json:"contactId,omitempty"`
	SaveToDatabase bool           `json:"saveToDatabase,omitempty"`
}

// Generate: POST /api/generate-outreach
func (h *OutreachHandler) Generate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req GenerateOutreachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "OutreachHandler.Generate", "invalid request body", err)
		return
	}

	res, err := h.svc.Generate(c.Request.Context(), services.GenerateInput{
		OwnerUserID:    userID,
		JobData:        req.JobData,
		OutreachType:   req.OutreachType,
		MessageType:    req.MessageType,
		ContactID:      req.ContactID,
		SaveToDatabase: req.SaveToDatabase,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type SaveOutreachRequest struct {
	JobData          models.JobData `json:"jobData"`
	OutreachType     string         `json:"outreachType"`
	MessageType      string         `json:"messageType"`
	ContactID        string         `json:"contactId,omitempty"`
	GeneratedMessage string         `json:"generatedMessage"`
}

// Save: POST /api/save-outreach
func (h *OutreachHandler) Save(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SaveOutreachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "OutreachHandler.Save", "invalid request body", err)
		return
	}

	id, err := h.svc.Save(c.Request.Context(), services.SaveInput{
		OwnerUserID:      userID,
		JobData:          req.JobData,
		OutreachType:     req.OutreachType,
		MessageType:      req.MessageType,
		ContactID:        req.ContactID,
		GeneratedMessage: req.GeneratedMessage,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "outreachRecordId": id})
}

// History: GET /api/outreach-history?limit=
func (h *OutreachHandler) History(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "OutreachHandler.History", "limit must be a number", err)
			return
		}
		limit = n
	}

	rows, err := h.svc.ListHistory(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "records": rows})
}
