package store

import (
	"context"
	"fmt"

	"github.com/ymakhloufi/credit-simulator/internal/pkg/config"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"go.uber.org/zap"
)

// Catalog is what every storage engine offers: the three list queries plus reference-data loading.
type Catalog interface {
	Seeder
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListSegments(ctx context.Context) ([]model.Segment, error)
	ListRates(ctx context.Context, filter model.RateFilter) ([]model.Rate, error)
}

var (
	_ Catalog = &Memory{}
	_ Catalog = &Postgres{}
)

// Open returns the configured store and a function releasing it. The memory store comes pre-seeded;
// the postgres store gets its schema applied.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (Catalog, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		m := NewMemory(logger)
		if err := Seed(ctx, m); err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil

	case config.DriverPostgres:
		pool, err := Connect(ctx, cfg.URL, cfg.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		pg := NewPostgres(pool, logger)
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg, pg.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
