package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/yoockh/outreach/internal/models"
	"github.com/yoockh/outreach/internal/utils"
)

// SessionCookie carries the access token for browser websockets, which cannot
// set an Authorization header. Only groups with JWTConfig.AllowCookie read it.
const SessionCookie = "session"

const (
	CtxUserID        = "user_id"
	CtxEmail         = "email"
	CtxEmailVerified = "email_verified"
	// CtxVerifiedClaim records whether the token carried email_verified at all.
	CtxVerifiedClaim = "email_verified_claim"
)

// PrincipalFrom returns the identity JWTAuth stored on c. UserID is empty when
// the request was not authenticated.
func PrincipalFrom(c *gin.Context) models.Principal {
	return models.Principal{
		UserID:        c.GetString(CtxUserID),
		Email:         c.GetString(CtxEmail),
		EmailVerified: c.GetBool(CtxEmailVerified),
	}
}

type apiError struct {
	Success bool       `json:"success"`
	Code    utils.Code `json:"code"`
	Error   string     `json:"error"`
}

func abort(c *gin.Context, status int, code utils.Code, msg string) {
	c.AbortWithStatusJSON(status, apiError{Success: false, Code: code, Error: msg})
}

type JWTConfig struct {
	Secret   string
	Issuer   string // optional
	Audience string // optional

	// AllowCookie accepts the session cookie when no Authorization header is
	// sent. Cookies ride along on cross-site requests, so enable it only where
	// the handler checks Origin.
	AllowCookie bool
}

type supabaseClaims struct {
	jwt.RegisteredClaims
	Email         string         `json:"email"`
	EmailVerified *bool          `json:"email_verified,omitempty"`
	UserMetadata  map[string]any `json:"user_metadata"`
}

// emailVerified reads the verification flag from the top-level claim or from
// user_metadata. present is false when the token carries neither; such tokens
// count as verified since the identity provider only issues email sessions
// after confirmation. RequireAdmin can be told to refuse them.
func (c *supabaseClaims) emailVerified() (verified, present bool) {
	if c.EmailVerified != nil {
		return *c.EmailVerified, true
	}
	if v, ok := c.UserMetadata["email_verified"].(bool); ok {
		return v, true
	}
	return true, false
}

func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Secret == "" {
			abort(c, http.StatusInternalServerError, utils.CodeInternal, "jwt secret is not configured")
			return
		}

		raw := bearerToken(c, cfg.AllowCookie)
		if raw == "" {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "authentication required")
			return
		}

		claims := &supabaseClaims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return []byte(cfg.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || tok == nil || !tok.Valid {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "invalid token")
			return
		}

		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "invalid token issuer")
			return
		}

		if cfg.Audience != "" {
			valid := false
			for _, aud := range claims.Audience {
				if aud == cfg.Audience {
					valid = true
					break
				}
			}
			if !valid {
				abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "invalid token audience")
				return
			}
		}

		if claims.Subject == "" {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "missing subject")
			return
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxEmail, strings.TrimSpace(claims.Email))
		verified, present := claims.emailVerified()
		c.Set(CtxEmailVerified, verified)
		c.Set(CtxVerifiedClaim, present)
		c.Next()
	}
}

func bearerToken(c *gin.Context, allowCookie bool) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if !allowCookie {
		return ""
	}
	if v, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}
