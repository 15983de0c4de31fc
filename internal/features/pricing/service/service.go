package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"fc-pro-backend/internal/common/cache"
	apperrors "fc-pro-backend/internal/common/errors"
	"fc-pro-backend/internal/common/logger"
	"fc-pro-backend/internal/features/pricing/models"
	"fc-pro-backend/internal/platform/chain"
)

// Reader is the subset of chain reads pricing depends on.
type Reader interface {
	TierInfo(ctx context.Context, tier *big.Int) (*chain.TierInfo, error)
	Price(ctx context.Context, tier, forDays *big.Int) (*big.Int, error)
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

type Service struct {
	reader   Reader
	cache    *cache.Service
	cacheTTL time.Duration
}

// NewService builds the pricing service. cache may be nil (reads go straight to chain).
func NewService(reader Reader, cacheSvc *cache.Service) *Service {
	return &Service{
		reader:   reader,
		cache:    cacheSvc,
		cacheTTL: 30 * time.Second,
	}
}

func snapshotCacheKey() string {
	return fmt.Sprintf("pricing:snapshot:%d:%d", models.ProTierID, models.ProDurationDays)
}

// Snapshot returns the current pricing view for the pro tier,
// short-lived cached so overlapping refreshes stay cheap.
func (s *Service) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	if s.cache == nil {
		return s.fetch(ctx)
	}

	snap := &models.Snapshot{}
	err := s.cache.GetOrSet(ctx, snapshotCacheKey(), snap, s.cacheTTL, func() (interface{}, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// fetch re-derives the snapshot from three independent reads. Each read may
// fail on its own; the first failure wins and nothing partial is returned.
func (s *Service) fetch(ctx context.Context) (*models.Snapshot, error) {
	tierID := big.NewInt(models.ProTierID)
	forDays := big.NewInt(models.ProDurationDays)

	tier, err := s.reader.TierInfo(ctx, tierID)
	if err != nil {
		return nil, apperrors.NewChainReadError("tierInfo", err)
	}

	decimals, err := s.reader.Decimals(ctx, tier.PaymentToken)
	if err != nil {
		return nil, apperrors.NewChainReadError("decimals", err)
	}

	quote, err := s.reader.Price(ctx, tierID, forDays)
	if err != nil {
		return nil, apperrors.NewChainReadError("price", err)
	}

	total := new(big.Int).Add(quote, big.NewInt(models.ExtraFeeUnits))

	logger.Debug().
		Str("quote", quote.String()).
		Str("total_cost", total.String()).
		Uint8("decimals", decimals).
		Msg("Pricing snapshot refreshed")

	return &models.Snapshot{
		Tier:      tier,
		Decimals:  decimals,
		Quote:     quote,
		TotalCost: total,
	}, nil
}

// Invalidate drops the cached snapshot so the next read hits the chain.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, snapshotCacheKey())
	}
}
