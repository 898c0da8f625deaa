package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ymakhloufi/credit-simulator/internal/app/resolver"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/cache"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Store interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListSegments(ctx context.Context) ([]model.Segment, error)
	ListRates(ctx context.Context, filter model.RateFilter) ([]model.Rate, error)
}

// Snapshot is a read-only copy of the whole catalog, as consumed by the resolver.
type Snapshot struct {
	Segments []model.Segment
	Products []model.Product
	Rates    []model.Rate
}

type Service struct {
	store  Store
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewService(store Store, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *Service) Products(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.cached(ctx, "products", &products, func() (interface{}, error) {
		return s.store.ListProducts(ctx)
	})
	return products, err
}

func (s *Service) Segments(ctx context.Context) ([]model.Segment, error) {
	var segments []model.Segment
	err := s.cached(ctx, "segments", &segments, func() (interface{}, error) {
		return s.store.ListSegments(ctx)
	})
	return segments, err
}

func (s *Service) Rates(ctx context.Context, filter model.RateFilter) ([]model.Rate, error) {
	var rates []model.Rate
	err := s.cached(ctx, ratesKey(filter), &rates, func() (interface{}, error) {
		return s.store.ListRates(ctx, filter)
	})
	return rates, err
}

// Snapshot loads segments, products and rates concurrently and checks that they are consistent.
// The three collections are cached together under one key so a snapshot never mixes generations.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.cached(ctx, "snapshot", &snap, func() (interface{}, error) {
		return s.loadSnapshot(ctx)
	})
	return snap, err
}

func (s *Service) loadSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Segments, err = s.store.ListSegments(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Products, err = s.store.ListProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Rates, err = s.store.ListRates(gctx, model.RateFilter{})
		return err
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if err := resolver.Validate(snap.Segments, snap.Rates); err != nil {
		return Snapshot{}, fmt.Errorf("inconsistent catalog: %w", err)
	}
	return snap, nil
}

// cached serves key from the cache, falling back to load. Cache failures are logged and never fail the call.
func (s *Service) cached(ctx context.Context, key string, dst interface{}, load func() (interface{}, error)) error {
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		err := json.Unmarshal([]byte(raw), dst)
		if err == nil {
			return nil
		}
		s.logger.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
	}

	fresh, err := load()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}

	raw, err := json.Marshal(fresh)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return json.Unmarshal(raw, dst)
}

func ratesKey(filter model.RateFilter) string {
	key := "rates"
	if filter.ProductId != nil {
		key += ":product=" + strconv.FormatInt(*filter.ProductId, 10)
	}
	if filter.SegmentId != nil {
		key += ":segment=" + strconv.FormatInt(*filter.SegmentId, 10)
	}
	return key
}
