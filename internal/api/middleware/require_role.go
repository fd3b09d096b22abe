package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/outreach/internal/utils"
)

type AdminConfig struct {
	// Email is the single admin address. Empty rejects everyone.
	Email string

	// RequireVerifiedClaim refuses admin tokens that carry no email_verified
	// claim instead of treating them as verified.
	RequireVerifiedClaim bool

	Logger *logrus.Logger // optional
}

// RequireAdmin lets a request through only when the session email matches
// cfg.Email and is verified. Runs after JWTAuth.
func RequireAdmin(cfg AdminConfig) gin.HandlerFunc {
	admin := strings.ToLower(strings.TrimSpace(cfg.Email))

	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p.UserID == "" {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "authentication required")
			return
		}

		email := strings.ToLower(strings.TrimSpace(p.Email))
		if admin == "" || email == "" || email != admin {
			abort(c, http.StatusForbidden, utils.CodeForbidden, "admin access required")
			return
		}
		if !p.EmailVerified {
			abort(c, http.StatusForbidden, utils.CodeForbidden, "admin email is not verified")
			return
		}

		if !c.GetBool(CtxVerifiedClaim) {
			if cfg.RequireVerifiedClaim {
				abort(c, http.StatusForbidden, utils.CodeForbidden, "admin email is not verified")
				return
			}
			if cfg.Logger != nil {
				cfg.Logger.WithFields(logrus.Fields{
					"user_id": p.UserID,
					"route":   c.FullPath(),
				}).Warn("admin access granted without email_verified claim")
			}
		}

		c.Next()
	}
}
