package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fc-pro-backend/internal/common/cache"
	apperrors "fc-pro-backend/internal/common/errors"
	"fc-pro-backend/internal/features/identity/models"
)

// Lookup is the upstream surface the identity service depends on.
type Lookup interface {
	Profile(ctx context.Context, fid uint64) (*models.Profile, error)
	ProStatus(ctx context.Context, fid uint64) (*models.ProStatus, error)
	LookupUsername(ctx context.Context, name string) (uint64, error)
}

type Service struct {
	client Lookup
	cache  *cache.Service
}

func NewService(client Lookup, cacheSvc *cache.Service) *Service {
	return &Service{client: client, cache: cacheSvc}
}

// Profile returns display data for fid, cached briefly.
func (s *Service) Profile(ctx context.Context, fid uint64) (*models.Profile, error) {
	if fid == 0 {
		return nil, apperrors.NewValidationError("fid", "must be a positive integer")
	}
	if s.cache == nil {
		p, err := s.client.Profile(ctx, fid)
		if err != nil {
			return nil, apperrors.NewFarcasterAPIError("profile", err)
		}
		return p, nil
	}

	p := &models.Profile{}
	key := fmt.Sprintf("identity:profile:%d", fid)
	err := s.cache.GetOrSet(ctx, key, p, time.Minute, func() (interface{}, error) {
		return s.client.Profile(ctx, fid)
	})
	if err != nil {
		return nil, apperrors.NewFarcasterAPIError("profile", err)
	}
	return p, nil
}

// ProStatus returns the subscription expiry for fid. Always fetched fresh:
// it changes the moment a purchase settles.
func (s *Service) ProStatus(ctx context.Context, fid uint64) (*models.ProStatus, error) {
	if fid == 0 {
		return nil, apperrors.NewValidationError("fid", "must be a positive integer")
	}
	st, err := s.client.ProStatus(ctx, fid)
	if err != nil {
		return nil, apperrors.NewFarcasterAPIError("proStatus", err)
	}
	return st, nil
}

// ResolveTarget picks the purchase target: an explicit fid parameter wins,
// otherwise the session's own identity.
func (s *Service) ResolveTarget(explicit string, sessionFID uint64) (uint64, error) {
	if explicit == "" {
		if sessionFID == 0 {
			return 0, apperrors.New(apperrors.ErrCodeInvalidTarget, "No target identity available")
		}
		return sessionFID, nil
	}

	fid, err := strconv.ParseUint(explicit, 10, 64)
	if err != nil || fid == 0 {
		return 0, apperrors.New(apperrors.ErrCodeInvalidTarget, "Invalid target FID")
	}
	return fid, nil
}

// ResolveUsername resolves a free-text username (optional "@" prefix) to a
// numeric identity. Used for the gift-to-a-searched-user flow.
func (s *Service) ResolveUsername(ctx context.Context, name string) (uint64, error) {
	name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "@"))
	if name == "" {
		return 0, apperrors.New(apperrors.ErrCodeUsernameLookup, "Invalid username")
	}

	fid, err := s.client.LookupUsername(ctx, strings.ToLower(name))
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeUsernameLookup, "Invalid username")
	}
	return fid, nil
}
