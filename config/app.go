package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig is built once at process start and passed to every component
// that needs it. Nothing below the main package reads the environment.
type AppConfig struct {
	Port     string
	LogLevel string

	AdminEmail           string
	AdminRequireVerified bool
	// AllowedOrigins may open the admin websocket besides the API's own origin.
	AllowedOrigins []string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	MongoURI    string
	MongoDB     string
	PostgresURI string
	RedisAddr   string

	LLMBackend     string // gemini | vertex
	ModelAPIKey    string
	ModelName      string
	VertexProject  string
	VertexLocation string

	GCSBucket             string
	GoogleCredentialsFile string

	EnrichProxyURL  string
	EnrichTimeout   time.Duration
	PreviewCacheTTL time.Duration
}

const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

func defaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("mongo_db", "outreach")
	v.SetDefault("llm_backend", BackendGemini)
	v.SetDefault("model_name", "gemini-2.0-flash")
	v.SetDefault("vertex_location", "us-central1")
	v.SetDefault("enrich_proxy_url", "https://r.jina.ai/")
	v.SetDefault("enrich_timeout", "5s")
	v.SetDefault("preview_cache_ttl", "6h")
}

// Load reads configuration from the environment (ADMIN_EMAIL, JWT_SECRET,
// MONGO_URI, ...). Call godotenv.Load first to pick up a local .env file.
func Load() (AppConfig, error) {
	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	// SUPABASE_* names are accepted for the JWT settings.
	secret := firstNonEmpty(v.GetString("jwt_secret"), v.GetString("supabase_jwt_secret"))
	issuer := firstNonEmpty(v.GetString("jwt_issuer"), v.GetString("supabase_jwt_issuer"))
	audience := firstNonEmpty(v.GetString("jwt_audience"), v.GetString("supabase_jwt_audience"))

	redisAddr := firstNonEmpty(v.GetString("redis_addr"), v.GetString("redis_uri"), v.GetString("redis_url"))

	cfg := AppConfig{
		Port:     v.GetString("port"),
		LogLevel: v.GetString("log_level"),

		AdminEmail:           strings.TrimSpace(v.GetString("admin_email")),
		AdminRequireVerified: v.GetBool("admin_require_verified"),
		AllowedOrigins:       splitList(v.GetString("allowed_origins")),

		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTAudience: audience,

		MongoURI:    v.GetString("mongo_uri"),
		MongoDB:     v.GetString("mongo_db"),
		PostgresURI: v.GetString("postgres_uri"),
		RedisAddr:   redisAddr,

		LLMBackend:     strings.ToLower(strings.TrimSpace(v.GetString("llm_backend"))),
		ModelAPIKey:    firstNonEmpty(v.GetString("model_api_key"), v.GetString("gemini_api_key")),
		ModelName:      v.GetString("model_name"),
		VertexProject:  v.GetString("vertex_project"),
		VertexLocation: v.GetString("vertex_location"),

		GCSBucket:             v.GetString("gcs_bucket"),
		GoogleCredentialsFile: v.GetString("google_credentials_file"),

		EnrichProxyURL:  v.GetString("enrich_proxy_url"),
		EnrichTimeout:   v.GetDuration("enrich_timeout"),
		PreviewCacheTTL: v.GetDuration("preview_cache_ttl"),
	}
	return cfg, cfg.Validate()
}

// Validate reports the first missing required setting. An empty AdminEmail is
// allowed: admin routes then reject every caller.
func (c AppConfig) Validate() error {
	switch {
	case c.JWTSecret == "":
		return errors.New("JWT_SECRET (or SUPABASE_JWT_SECRET) environment variable is not set")
	case c.MongoURI == "":
		return errors.New("MONGO_URI environment variable is not set")
	case c.PostgresURI == "":
		return errors.New("POSTGRES_URI environment variable is not set")
	}

	switch c.LLMBackend {
	case BackendGemini:
		if c.ModelAPIKey == "" {
			return errors.New("MODEL_API_KEY environment variable is not set")
		}
	case BackendVertex:
		if c.VertexProject == "" {
			return errors.New("VERTEX_PROJECT environment variable is not set")
		}
	default:
		return errors.New("LLM_BACKEND must be \"gemini\" or \"vertex\"")
	}

	if c.EnrichTimeout <= 0 {
		return errors.New("ENRICH_TIMEOUT must be positive")
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// splitList parses a comma separated env value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
