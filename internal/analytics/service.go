package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/pharmaquote/pharmaquote-backend/pkg/errors"
	"github.com/pharmaquote/pharmaquote-backend/pkg/logger"
	"github.com/pharmaquote/pharmaquote-backend/pkg/redis"
)

// Dashboard is the landing-page metric bundle.
type Dashboard struct {
	Totals         Totals        `json:"totals"`
	StatusCounts   []StatusCount `json:"status_counts"`
	ConversionRate float64       `json:"conversion_rate"`
}

// Service computes dashboard metrics. Results are cached briefly in Redis;
// a cache outage degrades to direct queries rather than failing requests.
type Service interface {
	Dashboard(ctx context.Context, ownerID uuid.UUID) (*Dashboard, error)
	RevenueTrend(ctx context.Context, ownerID uuid.UUID, days int) ([]TrendPoint, error)
	TopBrands(ctx context.Context, ownerID uuid.UUID, limit int) ([]BrandStat, error)
}

type service struct {
	repo  *Repository
	cache redis.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewService constructs the analytics service. cache may be nil, which
// disables caching entirely.
func NewService(repo *Repository, cache redis.Cache, ttl time.Duration, log *logger.Logger) Service {
	return &service{repo: repo, cache: cache, ttl: ttl, log: log}
}

func cached[T any](ctx context.Context, s *service, scope, id string, compute func() (T, error)) (T, error) {
	var zero T
	if s.cache == nil {
		return compute()
	}

	key := s.cache.CacheKey(scope, id)
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var value T
		if err := json.Unmarshal([]byte(raw), &value); err == nil {
			return value, nil
		}
	} else if !errors.Is(err, redis.ErrCacheMiss) && s.log != nil {
		s.log.Error(ctx, "analytics cache read failed", err)
	}

	value, err := compute()
	if err != nil {
		return zero, err
	}
	if payload, err := json.Marshal(value); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil && s.log != nil {
			s.log.Error(ctx, "analytics cache write failed", err)
		}
	}
	return value, nil
}

func (s *service) Dashboard(ctx context.Context, ownerID uuid.UUID) (*Dashboard, error) {
	return cached(ctx, s, "analytics:dashboard", ownerID.String(), func() (*Dashboard, error) {
		totals, err := s.repo.Totals(ctx, ownerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate totals")
		}
		counts, err := s.repo.CountByStatus(ctx, ownerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate status counts")
		}

		// Conversion is accepted over decided offers. Quotes still in
		// draft, merely viewed, or quietly expired do not dilute the rate.
		var issued, accepted int64
		for _, sc := range counts {
			switch sc.Status {
			case "sent", "accepted", "rejected":
				issued += sc.Count
			}
			if sc.Status == "accepted" {
				accepted = sc.Count
			}
		}
		dashboard := &Dashboard{
			Totals:       *totals,
			StatusCounts: counts,
		}
		if issued > 0 {
			dashboard.ConversionRate = float64(accepted) / float64(issued)
		}
		return dashboard, nil
	})
}

func (s *service) RevenueTrend(ctx context.Context, ownerID uuid.UUID, days int) ([]TrendPoint, error) {
	id := fmt.Sprintf("%s:%d", ownerID, days)
	return cached(ctx, s, "analytics:trend", id, func() ([]TrendPoint, error) {
		points, err := s.repo.RevenueTrend(ctx, ownerID, days)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate revenue trend")
		}
		return points, nil
	})
}

func (s *service) TopBrands(ctx context.Context, ownerID uuid.UUID, limit int) ([]BrandStat, error) {
	id := fmt.Sprintf("%s:%d", ownerID, limit)
	return cached(ctx, s, "analytics:brands", id, func() ([]BrandStat, error) {
		stats, err := s.repo.TopBrands(ctx, ownerID, limit)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate brand stats")
		}
		return stats, nil
	})
}
