package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/outreach/internal/services"
)

type LinkPreviewHandler struct {
	svc services.LinkPreviewService
}

func NewLinkPreviewHandler(svc services.LinkPreviewService) *LinkPreviewHandler {
	return &LinkPreviewHandler{svc: svc}
}

// Resolve: GET /api/link-preview?url=. Always 200; failures yield a null image.
func (h *LinkPreviewHandler) Resolve(c *gin.Context) {
	img := h.svc.ResolvePreviewImage(c.Request.Context(), c.Query("url"))
	c.JSON(http.StatusOK, gin.H{"image": img})
}
