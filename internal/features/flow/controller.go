package flow

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	apperrors "fc-pro-backend/internal/common/errors"
	"fc-pro-backend/internal/common/logger"
	"fc-pro-backend/internal/common/metrics"
	identitymodels "fc-pro-backend/internal/features/identity/models"
	"fc-pro-backend/internal/features/notify"
	pricingmodels "fc-pro-backend/internal/features/pricing/models"
	"fc-pro-backend/internal/platform/chain"
)

// User-facing precondition messages, surfaced verbatim by the mini app.
const (
	MsgConnectWallet       = "Please connect your wallet"
	MsgSwitchChain         = "Please switch to the Base network"
	MsgPriceNotLoaded      = "Price not loaded yet, please try again"
	MsgInvalidTarget       = "Invalid target FID"
	MsgTierUnavailable     = "Pro subscriptions are currently unavailable"
	MsgInsufficientBalance = "Insufficient USDC balance"
	MsgPurchaseFailed      = "Transaction failed, please try again"
)

// PricingSource yields the current pricing snapshot.
type PricingSource interface {
	Snapshot(ctx context.Context) (*pricingmodels.Snapshot, error)
}

// ProfileSource yields display data used in notification text.
type ProfileSource interface {
	Profile(ctx context.Context, fid uint64) (*identitymodels.Profile, error)
}

// BalanceReader reads the wallet's token balance.
type BalanceReader interface {
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)
}

// Options carries the fixed addresses and identities the controller binds to.
type Options struct {
	RequiredChainID uint64
	Registry        common.Address
	PaymentToken    common.Address
	FeeRecipient    common.Address
	OperatorFID     uint64
	// Debounce delays validation after a purchase trigger. UI smoothing,
	// not a correctness mechanism.
	Debounce time.Duration
}

// Controller coordinates the purchase flow: validate preconditions, check
// balance, submit the batch, handle the terminal state. One instance serves
// the process; per-visit state lives in Session.
type Controller struct {
	opts     Options
	pricing  PricingSource
	profiles ProfileSource
	balances BalanceReader
	sender   chain.BatchSender
	notifier notify.Sender

	// reported deduplicates operator error relays for the controller's
	// lifetime, keyed "category:message".
	mu       sync.Mutex
	reported map[string]struct{}
}

func NewController(opts Options, pricing PricingSource, profiles ProfileSource, balances BalanceReader, sender chain.BatchSender, notifier notify.Sender) *Controller {
	if opts.Debounce == 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	return &Controller{
		opts:     opts,
		pricing:  pricing,
		profiles: profiles,
		balances: balances,
		sender:   sender,
		notifier: notifier,
		reported: make(map[string]struct{}),
	}
}

// Result is the terminal state of one purchase invocation.
type Result struct {
	// Status is "submitted" for a fresh batch, "already_purchased" when the
	// call turned into the share side effect.
	Status string `json:"status"`
	// BatchID identifies the submitted wallet batch, empty for the share path.
	BatchID string `json:"batch_id,omitempty"`
	// ShareText is the composed social post for the share side effect.
	ShareText string `json:"share_text,omitempty"`
	// Gift is true when the acting identity bought for someone else.
	Gift bool `json:"gift"`
	// PromptAddMiniApp tells the client to offer adding the mini app.
	PromptAddMiniApp bool `json:"prompt_add_mini_app,omitempty"`
	// Haptic names the feedback pattern the client should play.
	Haptic string `json:"haptic,omitempty"`
}

// Purchase runs the full flow against the session. On success the session's
// Purchased flag flips; a later call composes a share post instead of
// resubmitting. The caller persists the session afterwards.
func (c *Controller) Purchase(ctx context.Context, s *Session) (*Result, error) {
	select {
	case <-time.After(c.opts.Debounce):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if s.Purchased {
		return &Result{
			Status:    "already_purchased",
			ShareText: c.shareText(s),
			Gift:      s.Gift(),
		}, nil
	}

	snap, err := c.gate(ctx, s)
	if err != nil {
		return nil, err
	}

	wallet := common.HexToAddress(s.Wallet)
	if err := c.checkBalance(ctx, wallet, snap); err != nil {
		return nil, err
	}

	calls := c.buildBatch(s, snap)
	batchID, err := c.sender.SendCalls(ctx, wallet, s.ChainID, calls)
	if err != nil {
		metrics.PurchaseAttempts.WithLabelValues("failed").Inc()
		c.ReportError(ctx, "purchase", err.Error())
		return nil, apperrors.Wrap(err, apperrors.ErrCodePurchaseFailed, MsgPurchaseFailed)
	}

	s.Purchased = true
	metrics.PurchaseAttempts.WithLabelValues("success").Inc()
	logger.Info().
		Str("batch_id", batchID).
		Uint64("acting_fid", s.ActingFID).
		Uint64("target_fid", s.TargetFID).
		Bool("gift", s.Gift()).
		Msg("Purchase batch submitted")

	c.sendConfirmations(ctx, s)

	return &Result{
		Status:           "submitted",
		BatchID:          batchID,
		ShareText:        c.shareText(s),
		Gift:             s.Gift(),
		PromptAddMiniApp: true,
		Haptic:           "success",
	}, nil
}

// gate validates preconditions in fixed order and returns the pricing
// snapshot the rest of the flow uses. The first failing check aborts;
// nothing partial is ever submitted.
func (c *Controller) gate(ctx context.Context, s *Session) (*pricingmodels.Snapshot, error) {
	if !s.Connected() {
		return nil, c.reject(apperrors.ErrCodeWalletDisconnected, MsgConnectWallet)
	}
	if s.ChainID != c.opts.RequiredChainID {
		return nil, c.reject(apperrors.ErrCodeWrongChain, MsgSwitchChain)
	}

	snap, err := c.pricing.Snapshot(ctx)
	if err != nil {
		c.ReportError(ctx, "pricing", err.Error())
		return nil, err
	}
	if !snap.Loaded() {
		return nil, c.reject(apperrors.ErrCodePriceNotLoaded, MsgPriceNotLoaded)
	}

	if s.TargetFID == 0 {
		return nil, c.reject(apperrors.ErrCodeInvalidTarget, MsgInvalidTarget)
	}

	if !snap.Tier.IsActive || snap.Tier.PaymentToken != c.opts.PaymentToken {
		return nil, c.reject(apperrors.ErrCodeTierUnavailable, MsgTierUnavailable)
	}

	return snap, nil
}

// checkBalance compares the wallet's token balance against the total cost.
// The balance converts at a hardcoded 6 decimals while the cost uses the
// fetched precision; kept as-is to match the deployed behavior.
func (c *Controller) checkBalance(ctx context.Context, wallet common.Address, snap *pricingmodels.Snapshot) error {
	balance, err := c.balances.BalanceOf(ctx, c.opts.PaymentToken, wallet)
	if err != nil {
		c.ReportError(ctx, "balance", err.Error())
		return apperrors.NewChainReadError("balanceOf", err)
	}

	balanceUnits := new(big.Float).Quo(new(big.Float).SetInt(balance), big.NewFloat(1e6))
	costUnits := new(big.Float).Quo(new(big.Float).SetInt(snap.TotalCost), pow10(snap.Decimals))
	if balanceUnits.Cmp(costUnits) < 0 {
		return c.reject(apperrors.ErrCodeInsufficientBalance, MsgInsufficientBalance)
	}
	return nil
}

// buildBatch constructs the three call payloads in their fixed order:
// approve the registry for the total cost, purchase the tier for the target,
// transfer the fixed fee to the recipient.
func (c *Controller) buildBatch(s *Session, snap *pricingmodels.Snapshot) []chain.Call {
	return []chain.Call{
		{
			To:   c.opts.PaymentToken,
			Data: chain.ApproveCalldata(c.opts.Registry, snap.TotalCost),
		},
		{
			To: c.opts.Registry,
			Data: chain.PurchaseCalldata(
				new(big.Int).SetUint64(s.TargetFID),
				big.NewInt(pricingmodels.ProTierID),
				big.NewInt(pricingmodels.ProDurationDays),
			),
		},
		{
			To:   c.opts.PaymentToken,
			Data: chain.TransferCalldata(c.opts.FeeRecipient, big.NewInt(pricingmodels.ExtraFeeUnits)),
		},
	}
}

// sendConfirmations notifies the acting identity and, for gifts, the target.
// Best effort; delivery failures are logged inside the sender.
func (c *Controller) sendConfirmations(ctx context.Context, s *Session) {
	days := pricingmodels.ProDurationDays

	if !s.Gift() {
		_ = c.notifier.SendDirectCast(ctx, s.ActingFID, notify.SelfConfirmation(days))
		return
	}

	_ = c.notifier.SendDirectCast(ctx, s.ActingFID, notify.GiftSentConfirmation(s.TargetUsername, s.TargetFID, days))

	actorName := ""
	if c.profiles != nil {
		if p, err := c.profiles.Profile(ctx, s.ActingFID); err == nil {
			actorName = p.Username
		}
	}
	_ = c.notifier.SendDirectCast(ctx, s.TargetFID, notify.GiftReceived(actorName, s.ActingFID, days))
}

func (c *Controller) shareText(s *Session) string {
	if s.Gift() {
		if s.TargetUsername != "" {
			return fmt.Sprintf("I just gifted Farcaster Pro to @%s 💜", s.TargetUsername)
		}
		return fmt.Sprintf("I just gifted Farcaster Pro to fid %d 💜", s.TargetFID)
	}
	return "I just subscribed to Farcaster Pro 💜"
}

func (c *Controller) reject(code apperrors.ErrorCode, message string) error {
	metrics.PurchaseAttempts.WithLabelValues("rejected").Inc()
	metrics.PreconditionRejections.WithLabelValues(string(code)).Inc()
	return apperrors.New(code, message)
}

// ReportError forwards one (category, message) pair to the operator
// identity, once per controller lifetime.
func (c *Controller) ReportError(ctx context.Context, category, message string) {
	key := category + ":" + message

	c.mu.Lock()
	if _, seen := c.reported[key]; seen {
		c.mu.Unlock()
		return
	}
	// Bound the set; a session producing this many distinct errors is
	// broken anyway and we stop relaying rather than grow without limit.
	if len(c.reported) >= 256 {
		c.mu.Unlock()
		return
	}
	c.reported[key] = struct{}{}
	c.mu.Unlock()

	metrics.OperatorRelays.Inc()
	_ = c.notifier.SendDirectCast(ctx, c.opts.OperatorFID, fmt.Sprintf("⚠️ [%s] %s", category, message))
}

func pow10(decimals uint8) *big.Float {
	exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Float).SetInt(exp)
}
