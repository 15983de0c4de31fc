package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "fc-pro-backend/internal/common/errors"
	"fc-pro-backend/internal/common/middleware"
	"fc-pro-backend/internal/features/identity/service"
	"fc-pro-backend/internal/utils/duration"
)

type IdentityHandler struct {
	service *service.Service
	logger  zerolog.Logger
}

func NewIdentityHandler(service *service.Service, logger zerolog.Logger) *IdentityHandler {
	return &IdentityHandler{service: service, logger: logger}
}

func (h *IdentityHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/profile", h.getProfile)
	router.GET("/proStatus", h.getProStatus)
	router.GET("/resolve", h.resolveUsername)
}

func parseFID(c *gin.Context) (uint64, bool) {
	fid, err := strconv.ParseUint(c.Query("fid"), 10, 64)
	if err != nil || fid == 0 {
		return 0, false
	}
	return fid, true
}

// @Summary Get profile
// @Description Display data for a Farcaster account by numeric identity.
// @Tags identity
// @Produce json
// @Param fid query int true "Farcaster ID"
// @Success 200 {object} models.Profile
// @Failure 400 {object} middleware.ErrorResponse
// @Router /profile [get]
func (h *IdentityHandler) getProfile(c *gin.Context) {
	fid, ok := parseFID(c)
	if !ok {
		middleware.Abort(c, h.logger, apperrors.NewValidationError("fid", "must be a positive integer"))
		return
	}

	profile, err := h.service.Profile(c.Request.Context(), fid)
	if err != nil {
		middleware.Abort(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ProStatusResponse pairs the raw expiry with its rendered remaining span.
type ProStatusResponse struct {
	ExpiresAt int64  `json:"expires_at"`
	Remaining string `json:"remaining"`
}

// @Summary Get pro status
// @Description Subscription expiry and human-readable remaining duration.
// @Tags identity
// @Produce json
// @Param fid query int true "Farcaster ID"
// @Success 200 {object} ProStatusResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /proStatus [get]
func (h *IdentityHandler) getProStatus(c *gin.Context) {
	fid, ok := parseFID(c)
	if !ok {
		middleware.Abort(c, h.logger, apperrors.NewValidationError("fid", "must be a positive integer"))
		return
	}

	status, err := h.service.ProStatus(c.Request.Context(), fid)
	if err != nil {
		middleware.Abort(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ProStatusResponse{
		ExpiresAt: status.ExpiresAt,
		Remaining: duration.Until(time.Now(), time.Unix(status.ExpiresAt, 0)),
	})
}

// ResolveResponse carries a resolved numeric identity.
type ResolveResponse struct {
	FID uint64 `json:"fid"`
}

// @Summary Resolve username
// @Description Resolve a username (optionally @-prefixed) to a numeric identity.
// @Tags identity
// @Produce json
// @Param username query string true "Username"
// @Success 200 {object} ResolveResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /resolve [get]
func (h *IdentityHandler) resolveUsername(c *gin.Context) {
	fid, err := h.service.ResolveUsername(c.Request.Context(), c.Query("username"))
	if err != nil {
		middleware.Abort(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ResolveResponse{FID: fid})
}
