package crawler

import (
	"context"
	"sync"

	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"go.uber.org/zap"
)

type Store interface {
	UpsertRateQuote(ctx context.Context, quote model.RateQuote) error
}

type SiteCrawler interface {
	Crawl(ctx context.Context, quotes chan<- model.RateQuote)
}

type Service struct {
	store    Store
	crawlers []SiteCrawler
	logger   *zap.Logger
}

type Stats struct {
	Upserted int
	Failed   int
}

func NewService(store Store, crawlers []SiteCrawler, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		crawlers: crawlers,
		logger:   logger,
	}
}

// Crawl runs all crawlers concurrently and upserts their quotes one by one. It returns once every
// received quote has been handled.
func (s Service) Crawl(ctx context.Context) Stats {
	var wg sync.WaitGroup
	objChan := make(chan model.RateQuote)
	done := make(chan Stats)

	for _, c := range s.crawlers {
		wg.Add(1)
		go func(c SiteCrawler) {
			defer wg.Done()
			c.Crawl(ctx, objChan)
		}(c)
	}

	go s.recv(ctx, objChan, done)

	wg.Wait()
	s.logger.Info("all crawlers finished, closing channels")
	close(objChan)

	stats := <-done
	s.logger.Info("crawl finished", zap.Int("upserted", stats.Upserted), zap.Int("failed", stats.Failed))
	return stats
}

func (s Service) recv(ctx context.Context, c <-chan model.RateQuote, done chan<- Stats) {
	s.logger.Info("starting crawler receiver")

	var stats Stats
	for quote := range c {
		if err := s.store.UpsertRateQuote(ctx, quote); err != nil {
			s.logger.Error("failed to upsert rate quote", zap.Any("quote", quote), zap.Error(err))
			stats.Failed++
			continue
		}

		stats.Upserted++
		s.logger.Debug("successfully upserted rate quote", zap.Any("quote", quote))
	}
	done <- stats
}
