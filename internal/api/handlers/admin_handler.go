package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/outreach/internal/models"
	"github.com/yoockh/outreach/internal/services"
)

type AdminHandler struct {
	entries services.EntryService
}

func NewAdminHandler(entries services.EntryService) *AdminHandler {
	return &AdminHandler{entries: entries}
}

type estimateResponse struct {
	Success bool `json:"success"`
	models.CollectionEstimate
}

// EstimateEntries: GET /api/admin/clear-entries
func (h *AdminHandler) EstimateEntries(c *gin.Context) {
	est, err := h.entries.EstimateCollectionSize(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimateResponse{Success: true, CollectionEstimate: *est})
}

type deleteBatchRequest struct {
	BatchSize *int `json:"batchSize"`
}

type deleteBatchResponse struct {
	Success bool `json:"success"`
	models.BatchDeleteResult
}

// DeleteBatch: DELETE /api/admin/clear-entries
func (h *AdminHandler) DeleteBatch(c *gin.Context) {
	var req deleteBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "AdminHandler.DeleteBatch", "invalid request body", err)
		return
	}

	size := services.DefaultBatchSize
	if req.BatchSize != nil {
		size = *req.BatchSize
	}

	res, err := h.entries.DeleteBatch(c.Request.Context(), size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, deleteBatchResponse{Success: true, BatchDeleteResult: *res})
}

// ListEntries: GET /api/admin/data-management
func (h *AdminHandler) ListEntries(c *gin.Context) {
	rows, stats, err := h.entries.ListEntries(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entries": rows, "stats": stats})
}

type deleteSelectedRequest struct {
	EntryIDs []string `json:"entryIds"`
}

type deleteSelectedResponse struct {
	Success bool `json:"success"`
	models.SelectiveDeleteResult
}

// DeleteSelected: DELETE /api/admin/data-management
func (h *AdminHandler) DeleteSelected(c *gin.Context) {
	var req deleteSelectedRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "AdminHandler.DeleteSelected", "invalid request body", err)
		return
	}

	res, err := h.entries.DeleteSelected(c.Request.Context(), req.EntryIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, deleteSelectedResponse{Success: true, SelectiveDeleteResult: *res})
}

// ListLinkedInPosts: GET /api/admin/linkedin-posts
func (h *AdminHandler) ListLinkedInPosts(c *gin.Context) {
	rows, err := h.entries.ListLinkedInPosts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entries": rows})
}
