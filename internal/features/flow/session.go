package flow

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	apperrors "fc-pro-backend/internal/common/errors"
	"fc-pro-backend/internal/platform/redis"
)

// Session is the explicit state of one subscription flow. Every field is
// set through a discrete transition; nothing here is ambient.
type Session struct {
	ID string `json:"id"`
	// Wallet is the connected address in hex, empty while disconnected.
	Wallet  string `json:"wallet"`
	ChainID uint64 `json:"chain_id"`
	// ActingFID is the identity performing the purchase.
	ActingFID uint64 `json:"acting_fid"`
	// TargetFID is the identity receiving the subscription. Equal to
	// ActingFID for a self purchase, different for a gift.
	TargetFID uint64 `json:"target_fid"`
	// TargetUsername is kept for message and share text composition.
	TargetUsername string `json:"target_username,omitempty"`
	// Purchased flips once the batch is accepted; later purchase calls
	// turn into the share side effect.
	Purchased bool      `json:"purchased"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Connected reports whether a wallet is attached to the session.
func (s *Session) Connected() bool {
	return s.Wallet != ""
}

// Gift reports whether the purchase benefits someone other than the actor.
func (s *Session) Gift() bool {
	return s.TargetFID != 0 && s.TargetFID != s.ActingFID
}

// Store persists sessions in Redis for the lifetime of the mini-app visit.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, ttl: 24 * time.Hour}
}

func sessionKey(id string) string {
	return "flow:session:" + id
}

// Get loads a session by id.
func (st *Store) Get(ctx context.Context, id string) (*Session, error) {
	data, err := st.rdb.Get(ctx, sessionKey(id)).Result()
	if err == goredis.Nil {
		return nil, apperrors.New(apperrors.ErrCodeSessionNotFound, "Session not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "Session read failed")
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "Session decode failed")
	}
	return &s, nil
}

// GetOrCreate loads a session, creating a fresh one when absent.
func (st *Store) GetOrCreate(ctx context.Context, id string) (*Session, error) {
	s, err := st.Get(ctx, id)
	if err == nil {
		return s, nil
	}
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Code != apperrors.ErrCodeSessionNotFound {
		return nil, err
	}

	s = &Session{ID: id, UpdatedAt: time.Now()}
	if err := st.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the session back with a sliding TTL.
func (st *Store) Save(ctx context.Context, s *Session) error {
	s.UpdatedAt = time.Now()
	data, err := json.Marshal(s)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "Session encode failed")
	}
	if err := st.rdb.Set(ctx, sessionKey(s.ID), string(data), st.ttl).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "Session write failed")
	}
	return nil
}
