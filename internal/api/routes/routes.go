package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yoockh/outreach/internal/api/handlers"
	"github.com/yoockh/outreach/internal/api/middleware"
)

type Deps struct {
	JWT       middleware.JWTConfig
	AdminAuth middleware.AdminConfig

	Admin        *handlers.AdminHandler
	Outreach     *handlers.OutreachHandler
	Profile      *handlers.ProfileHandler
	Subscription *handlers.SubscriptionHandler
	LinkPreview  *handlers.LinkPreviewHandler
	WS           *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Public
	api.GET("/link-preview", d.LinkPreview.Resolve)

	// Protected routes (JWT, Authorization header only)
	apiJWT := d.JWT
	apiJWT.AllowCookie = false
	auth := api.Group("/")
	auth.Use(middleware.JWTAuth(apiJWT))

	auth.GET("/subscription", d.Subscription.Status)
	auth.POST("/subscription", d.Subscription.Activate)
	auth.DELETE("/subscription", d.Subscription.Cancel)

	auth.GET("/user-profile", d.Profile.Me)
	auth.POST("/user-profile", d.Profile.Update)
	auth.POST("/user-profile/resume", d.Profile.UploadResume)

	auth.POST("/generate-outreach", d.Outreach.Generate)
	auth.POST("/save-outreach", d.Outreach.Save)
	auth.GET("/outreach-history", d.Outreach.History)

	// Admin (JWT + configured admin email)
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin(d.AdminAuth))

	admin.GET("/clear-entries", d.Admin.EstimateEntries)
	admin.DELETE("/clear-entries", d.Admin.DeleteBatch)
	admin.GET("/data-management", d.Admin.ListEntries)
	admin.DELETE("/data-management", d.Admin.DeleteSelected)
	admin.GET("/linkedin-posts", d.Admin.ListLinkedInPosts)

	// WebSocket: browsers cannot set headers here, so the session cookie is
	// accepted and WSHandler enforces Origin
	wsJWT := d.JWT
	wsJWT.AllowCookie = true
	ws := r.Group("/ws")
	ws.Use(middleware.JWTAuth(wsJWT), middleware.RequireAdmin(d.AdminAuth))
	ws.GET("/admin/clear-entries", d.WS.ClearEntriesWS)
}
