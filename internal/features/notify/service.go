package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"fc-pro-backend/internal/common/logger"
)

// Sender delivers direct-cast messages to Farcaster accounts.
type Sender interface {
	SendDirectCast(ctx context.Context, recipientFID uint64, message string) error
}

// Service sends direct casts through the upstream API. Sends are
// fire-and-forget from the caller's point of view: failures are logged,
// never retried.
type Service struct {
	httpClient *http.Client
	apiBase    string
	apiToken   string
}

func NewService(apiBase, apiToken string) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: 8 * time.Second},
		apiBase:    strings.TrimRight(apiBase, "/"),
		apiToken:   apiToken,
	}
}

type directCastBody struct {
	RecipientFID uint64 `json:"recipientFid"`
	Message      string `json:"message"`
}

// SendDirectCast PUTs one message with a fresh idempotency key.
func (s *Service) SendDirectCast(ctx context.Context, recipientFID uint64, message string) error {
	body, err := json.Marshal(directCastBody{RecipientFID: recipientFID, Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.apiBase+"/api/dc", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.New().String())
	if s.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Uint64("recipient_fid", recipientFID).Msg("Direct cast send failed")
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("direct cast http %d", resp.StatusCode)
		logger.Warn().Err(err).Uint64("recipient_fid", recipientFID).Msg("Direct cast send failed")
		return err
	}
	return nil
}

// SelfConfirmation is the message sent to the acting identity after a
// successful self purchase.
func SelfConfirmation(days int) string {
	return fmt.Sprintf("✅ Your Farcaster Pro subscription is active for the next %d days. Thanks for subscribing!", days)
}

// GiftSentConfirmation is the message sent to the acting identity after
// gifting a subscription to someone else.
func GiftSentConfirmation(targetUsername string, targetFID uint64, days int) string {
	who := "@" + targetUsername
	if targetUsername == "" {
		who = fmt.Sprintf("fid %d", targetFID)
	}
	return fmt.Sprintf("🎁 You gifted %d days of Farcaster Pro to %s.", days, who)
}

// GiftReceived is the message sent to the target identity of a gift.
func GiftReceived(actorUsername string, actorFID uint64, days int) string {
	who := "@" + actorUsername
	if actorUsername == "" {
		who = fmt.Sprintf("fid %d", actorFID)
	}
	return fmt.Sprintf("🎁 %s gifted you %d days of Farcaster Pro. Enjoy!", who, days)
}
