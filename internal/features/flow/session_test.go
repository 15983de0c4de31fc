package flow

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fc-pro-backend/internal/common/errors"
	"fc-pro-backend/internal/platform/redis"
)

func newTestStore(t *testing.T) *Store {
	mr := miniredis.RunT(t)
	rdb := &redis.Client{Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}
	return NewStore(rdb)
}

func TestStore_SaveAndGet(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	s := &Session{
		ID:             "abc",
		Wallet:         "0x2222222222222222222222222222222222222222",
		ChainID:        8453,
		ActingFID:      100,
		TargetFID:      200,
		TargetUsername: "bob",
		Purchased:      true,
	}
	require.NoError(t, st.Save(ctx, s))

	got, err := st.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, s.Wallet, got.Wallet)
	assert.Equal(t, uint64(8453), got.ChainID)
	assert.Equal(t, uint64(200), got.TargetFID)
	assert.True(t, got.Purchased)
	assert.True(t, got.Gift())
}

func TestStore_GetMissing(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Get(context.Background(), "nope")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, appErr.Code)
}

func TestStore_GetOrCreate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	s, err := st.GetOrCreate(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", s.ID)
	assert.False(t, s.Connected())
	assert.False(t, s.Purchased)

	s.Wallet = "0x2222222222222222222222222222222222222222"
	require.NoError(t, st.Save(ctx, s))

	again, err := st.GetOrCreate(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, again.Connected())
}

func TestSession_Gift(t *testing.T) {
	s := &Session{ActingFID: 100, TargetFID: 100}
	assert.False(t, s.Gift())

	s.TargetFID = 200
	assert.True(t, s.Gift())

	s.TargetFID = 0
	assert.False(t, s.Gift())
}
