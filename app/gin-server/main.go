package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/yoockh/outreach/config"
	"github.com/yoockh/outreach/internal/api/handlers"
	"github.com/yoockh/outreach/internal/api/middleware"
	"github.com/yoockh/outreach/internal/api/routes"
	"github.com/yoockh/outreach/internal/cache"
	"github.com/yoockh/outreach/internal/logger"
	"github.com/yoockh/outreach/internal/providers/enrich"
	"github.com/yoockh/outreach/internal/providers/llm"
	mongorepo "github.com/yoockh/outreach/internal/repositories/mongo"
	pgrepo "github.com/yoockh/outreach/internal/repositories/postgres"
	"github.com/yoockh/outreach/internal/services"
	"github.com/yoockh/outreach/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config error")
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init MongoDB
	mongoClient, err := config.NewMongo(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("MongoDB init error")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	db := mongoClient.Database(cfg.MongoDB)
	if err := config.EnsureMongoIndexes(ctx, db); err != nil {
		log.WithError(err).Warn("mongo index creation failed")
	}
	log.Info("MongoDB connected")

	// Init PostgreSQL
	pg, err := config.NewPostgres(cfg)
	if err != nil {
		log.WithError(err).Fatal("PostgreSQL init error")
	}
	if err := config.MigratePostgres(pg); err != nil {
		log.WithError(err).Fatal("PostgreSQL migration error")
	}
	log.Info("PostgreSQL connected")

	// Init Redis (optional)
	var c cache.Cache = cache.Noop{}
	rdb, err := config.NewRedis(ctx, cfg)
	switch {
	case err != nil:
		log.WithError(err).Warn("Redis unavailable, running without cache")
	case rdb != nil:
		defer func() { _ = rdb.Close() }()
		c = cache.NewRedisCache(rdb, "outreach")
		log.Info("Redis connected")
	}

	var googleOpts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" {
		googleOpts = append(googleOpts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}

	model, err := newModel(ctx, cfg, googleOpts)
	if err != nil {
		log.WithError(err).Fatal("generative model init error")
	}
	defer func() { _ = model.Close() }()

	// nil keeps resume PDFs inline in Postgres
	var resumes storage.ObjectStore
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSStore(ctx, cfg.GCSBucket, googleOpts...)
		if err != nil {
			log.WithError(err).Fatal("GCS init error")
		}
		defer func() { _ = gcs.Close() }()
		resumes = gcs
	}

	// Repositories
	entryRepo := mongorepo.NewEntryRepo(db, config.CollectionEntries)
	postRepo := mongorepo.NewEntryRepo(db, config.CollectionLinkedInPosts)
	outreachRepo := mongorepo.NewOutreachRepo(db, config.CollectionOutreachHistory)
	profileRepo := pgrepo.NewProfileRepo(pg)
	subRepo := pgrepo.NewSubscriptionRepo(pg)

	// Services
	entrySvc := services.NewEntryService(entryRepo, postRepo, log)
	profileSvc := services.NewProfileService(profileRepo, resumes, log)
	subSvc := services.NewSubscriptionService(subRepo, c, log)
	previewSvc := services.NewLinkPreviewService(nil, c, cfg.PreviewCacheTTL, log)
	enricher := enrich.NewProxyEnricher(cfg.EnrichProxyURL, cfg.EnrichTimeout, log)
	outreachSvc := services.NewOutreachService(profileSvc, outreachRepo, enricher, model, log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		JWT: middleware.JWTConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		},
		AdminAuth: middleware.AdminConfig{
			Email:                cfg.AdminEmail,
			RequireVerifiedClaim: cfg.AdminRequireVerified,
			Logger:               log,
		},
		Admin:        handlers.NewAdminHandler(entrySvc),
		Outreach:     handlers.NewOutreachHandler(outreachSvc),
		Profile:      handlers.NewProfileHandler(profileSvc),
		Subscription: handlers.NewSubscriptionHandler(subSvc),
		LinkPreview:  handlers.NewLinkPreviewHandler(previewSvc),
		WS:           handlers.NewWSHandler(entrySvc, log, cfg.AllowedOrigins...),
	})

	if cfg.AdminEmail == "" {
		log.Warn("ADMIN_EMAIL is not set, admin routes will reject every caller")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func newModel(ctx context.Context, cfg config.AppConfig, opts []option.ClientOption) (llm.Provider, error) {
	if cfg.LLMBackend == config.BackendVertex {
		return llm.NewVertexGemini(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.ModelName, opts...)
	}
	return llm.NewGeminiAPI(ctx, cfg.ModelAPIKey, cfg.ModelName)
}
