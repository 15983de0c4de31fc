package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "fc-pro-backend/internal/common/errors"
	"fc-pro-backend/internal/common/middleware"
	"fc-pro-backend/internal/features/flow"
	identityservice "fc-pro-backend/internal/features/identity/service"
	pricingservice "fc-pro-backend/internal/features/pricing/service"
)

type FlowHandler struct {
	controller *flow.Controller
	sessions   *flow.Store
	identity   *identityservice.Service
	pricing    *pricingservice.Service
	logger     zerolog.Logger
}

func NewFlowHandler(controller *flow.Controller, sessions *flow.Store, identity *identityservice.Service, pricing *pricingservice.Service, logger zerolog.Logger) *FlowHandler {
	return &FlowHandler{
		controller: controller,
		sessions:   sessions,
		identity:   identity,
		pricing:    pricing,
		logger:     logger,
	}
}

func (h *FlowHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/pricing", h.getPricing)
	router.POST("/purchase", h.postPurchase)
}

// @Summary Get pricing
// @Description Current pro tier pricing snapshot.
// @Tags flow
// @Produce json
// @Success 200 {object} models.Snapshot
// @Failure 502 {object} middleware.ErrorResponse
// @Router /pricing [get]
func (h *FlowHandler) getPricing(c *gin.Context) {
	snap, err := h.pricing.Snapshot(c.Request.Context())
	if err != nil {
		h.controller.ReportError(c.Request.Context(), "pricing", err.Error())
		middleware.Abort(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// PurchaseRequest reports the mini app's current wallet and identity state
// and triggers the purchase flow.
type PurchaseRequest struct {
	SessionID string `json:"session_id"`
	Wallet    string `json:"wallet"`
	ChainID   uint64 `json:"chain_id"`
	ActingFID uint64 `json:"acting_fid"`
	// Target is an optional explicit fid from the launch query parameter.
	Target string `json:"target,omitempty"`
	// Username optionally overrides the target via name lookup (gift search).
	Username string `json:"username,omitempty"`
}

// PurchaseResponse wraps the flow result with the session id, so first-time
// callers learn theirs.
type PurchaseResponse struct {
	SessionID string       `json:"session_id"`
	Result    *flow.Result `json:"result"`
}

// @Summary Purchase or gift a pro subscription
// @Description Validates preconditions, checks the balance and submits the batched transaction. After a prior success the call composes a share post instead.
// @Tags flow
// @Accept json
// @Produce json
// @Param request body PurchaseRequest true "Purchase request"
// @Success 200 {object} PurchaseResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 402 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /purchase [post]
func (h *FlowHandler) postPurchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, h.logger, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	ctx := c.Request.Context()
	session, err := h.sessions.GetOrCreate(ctx, req.SessionID)
	if err != nil {
		middleware.Abort(c, h.logger, err)
		return
	}

	// Discrete transitions from the reported client state.
	session.Wallet = req.Wallet
	session.ChainID = req.ChainID
	session.ActingFID = req.ActingFID

	if req.Username != "" {
		fid, err := h.identity.ResolveUsername(ctx, req.Username)
		if err != nil {
			middleware.Abort(c, h.logger, err)
			return
		}
		session.TargetFID = fid
		session.TargetUsername = strings.TrimPrefix(strings.TrimSpace(req.Username), "@")
	} else {
		fid, err := h.identity.ResolveTarget(req.Target, session.ActingFID)
		if err != nil {
			middleware.Abort(c, h.logger, err)
			return
		}
		if fid != session.TargetFID {
			session.TargetFID = fid
			session.TargetUsername = ""
		}
	}

	result, err := h.controller.Purchase(ctx, session)

	// The session reflects every transition that happened, success or not.
	if saveErr := h.sessions.Save(ctx, session); saveErr != nil {
		h.logger.Warn().Err(saveErr).Str("session_id", session.ID).Msg("Session save failed")
	}

	if err != nil {
		middleware.Abort(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, PurchaseResponse{SessionID: session.ID, Result: result})
}
