package crawler

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"go.uber.org/zap"
)

var _ SiteCrawler = &StaticCrawler{}

// StaticCrawler replays a fixed list of quotes, e.g. the built-in seed table.
type StaticCrawler struct {
	quotes []model.RateQuote
	logger *zap.Logger
}

func NewStaticCrawler(quotes []model.RateQuote, logger *zap.Logger) *StaticCrawler {
	return &StaticCrawler{quotes: quotes, logger: logger}
}

func (s StaticCrawler) Crawl(ctx context.Context, quotes chan<- model.RateQuote) {
	crawlTime := time.Now()
	for _, q := range s.quotes {
		q.QuotedOn = civil.DateOf(crawlTime)
		q.LastCrawledAt = crawlTime
		select {
		case quotes <- q:
		case <-ctx.Done():
			s.logger.Warn("static crawl cancelled", zap.Error(ctx.Err()))
			return
		}
	}
	s.logger.Info("replayed static quotes", zap.Int("count", len(s.quotes)))
}
