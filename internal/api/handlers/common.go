package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/outreach/internal/api/middleware"
	"github.com/yoockh/outreach/internal/utils"
)

type APIError struct {
	Success bool       `json:"success"`
	Code    utils.Code `json:"code"`
	Error   string     `json:"error"`
	// Details carries the upstream cause of a 5xx for diagnostics.
	Details string `json:"details,omitempty"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	resp := APIError{Success: false, Code: utils.CodeInternal, Error: http.StatusText(status)}

	var ae *utils.AppError
	if errors.As(err, &ae) {
		resp.Code = ae.Code
		resp.Error = ae.Message
	}
	if status >= http.StatusInternalServerError {
		resp.Details = utils.Details(err)
	}

	_ = c.Error(err)
	c.JSON(status, resp)
}

func requireUserID(c *gin.Context) (string, bool) {
	if p := middleware.PrincipalFrom(c); p.UserID != "" {
		return p.UserID, true
	}

	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "authentication required", nil))
	return "", false
}

func badRequest(c *gin.Context, op, msg string, err error) {
	writeError(c, utils.E(utils.CodeInvalidArgument, op, msg, err))
}
