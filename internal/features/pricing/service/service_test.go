package service

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fc-pro-backend/internal/common/cache"
	apperrors "fc-pro-backend/internal/common/errors"
	"fc-pro-backend/internal/features/pricing/models"
	"fc-pro-backend/internal/platform/chain"
	"fc-pro-backend/internal/platform/redis"
)

var usdc = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")

type fakeReader struct {
	tier     *chain.TierInfo
	tierErr  error
	price    *big.Int
	priceErr error
	decimals uint8
	decErr   error

	tierCalls int
}

func (f *fakeReader) TierInfo(ctx context.Context, tier *big.Int) (*chain.TierInfo, error) {
	f.tierCalls++
	return f.tier, f.tierErr
}

func (f *fakeReader) Price(ctx context.Context, tier, forDays *big.Int) (*big.Int, error) {
	return f.price, f.priceErr
}

func (f *fakeReader) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	return f.decimals, f.decErr
}

func activeReader() *fakeReader {
	return &fakeReader{
		tier: &chain.TierInfo{
			MinDays:          big.NewInt(30),
			MaxDays:          big.NewInt(365),
			PaymentToken:     usdc,
			TokenPricePerDay: big.NewInt(233_333),
			Vault:            common.HexToAddress("0x1111111111111111111111111111111111111111"),
			IsActive:         true,
		},
		price:    big.NewInt(7_000_000),
		decimals: 6,
	}
}

func TestSnapshot_TotalCost(t *testing.T) {
	svc := NewService(activeReader(), nil)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.True(t, snap.Loaded())

	assert.Equal(t, big.NewInt(7_000_000), snap.Quote)
	assert.Equal(t, big.NewInt(7_500_000), snap.TotalCost, "total = quote + fixed 0.5 unit fee")
	assert.Equal(t, uint8(6), snap.Decimals)
	assert.Equal(t, usdc, snap.Tier.PaymentToken)
	assert.True(t, snap.Tier.IsActive)
}

func TestSnapshot_ReadFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *fakeReader)
		call   string
	}{
		{name: "tier info", mutate: func(r *fakeReader) { r.tierErr = errors.New("revert") }, call: "tierInfo"},
		{name: "decimals", mutate: func(r *fakeReader) { r.decErr = errors.New("revert") }, call: "decimals"},
		{name: "price", mutate: func(r *fakeReader) { r.priceErr = errors.New("revert") }, call: "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := activeReader()
			tt.mutate(r)
			svc := NewService(r, nil)

			_, err := svc.Snapshot(context.Background())
			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeChainRead, appErr.Code)
			assert.Equal(t, tt.call, appErr.Details["call"])
		})
	}
}

func TestSnapshot_Cached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := &redis.Client{Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}
	cacheSvc := cache.NewService(rdb)

	r := activeReader()
	svc := NewService(r, cacheSvc)
	ctx := context.Background()

	first, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	second, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, r.tierCalls, "second read served from cache")
	assert.Equal(t, first.TotalCost, second.TotalCost)
	assert.Equal(t, first.Tier.PaymentToken, second.Tier.PaymentToken)

	svc.Invalidate(ctx)
	_, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, r.tierCalls)
}

func TestSnapshot_LoadedGuard(t *testing.T) {
	var snap *models.Snapshot
	assert.False(t, snap.Loaded())

	assert.False(t, (&models.Snapshot{}).Loaded())

	r := activeReader()
	r.price = big.NewInt(0)
	svc := NewService(r, nil)
	got, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, got.Loaded(), "zero quote is not a loaded price")
}
