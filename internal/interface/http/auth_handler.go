package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/swing-coach/internal/domain/auth"
	apperrors "github.com/yanqian/swing-coach/pkg/errors"
)

// Register creates an account and returns tokens.
func (h *Handler) Register(c *gin.Context) {
	if h.authSvc == nil {
		abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, "auth_disabled", "authentication unavailable", nil))
		return
	}
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, authHTTPError(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns tokens.
func (h *Handler) Login(c *gin.Context) {
	if h.authSvc == nil {
		abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, "auth_disabled", "authentication unavailable", nil))
		return
	}
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, authHTTPError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new pair.
func (h *Handler) Refresh(c *gin.Context) {
	if h.authSvc == nil {
		abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, "auth_disabled", "authentication unavailable", nil))
		return
	}
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.authSvc.Refresh(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, authHTTPError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Profile returns the authenticated account.
func (h *Handler) Profile(c *gin.Context) {
	if h.authSvc == nil {
		abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, "auth_disabled", "authentication unavailable", nil))
		return
	}
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	view, err := h.authSvc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, authHTTPError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

func authHTTPError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "auth_failed"
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "invalid_credentials"):
		status = http.StatusUnauthorized
		code = "invalid_credentials"
	case apperrors.IsCode(err, "invalid_token"):
		status = http.StatusForbidden
		code = "invalid_token"
	case apperrors.IsCode(err, "email_exists"):
		status = http.StatusConflict
		code = "email_exists"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}
