package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/outreach/internal/services"
)

type SubscriptionHandler struct {
	svc services.SubscriptionService
}

func NewSubscriptionHandler(svc services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

// Status: GET /api/subscription
func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	st, err := h.svc.GetStatus(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

type ActivateSubscriptionRequest struct {
	Plan           string `json:"plan,omitempty"`
	DurationMonths int    `json:"durationMonths,omitempty"`
}

// Activate: POST /api/subscription
func (h *SubscriptionHandler) Activate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ActivateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "SubscriptionHandler.Activate", "invalid request body", err)
		return
	}

	st, err := h.svc.Activate(c.Request.Context(), userID, req.Plan, req.DurationMonths)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Cancel: DELETE /api/subscription
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	st, err := h.svc.Cancel(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
