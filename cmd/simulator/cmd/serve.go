package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/ymakhloufi/credit-simulator/internal/app/api"
	"github.com/ymakhloufi/credit-simulator/internal/app/catalog"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/cache"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/store"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog and simulation HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closeFn, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := api.NewServer(svc, cfg.Server.CORSOrigins, logger.Named("api"))
	logger.Info("serving", zap.String("addr", cfg.Server.Addr()), zap.String("driver", cfg.Database.Driver))
	return srv.ListenAndServe(ctx, cfg.Server.Addr())
}

// openCatalog wires the configured store and cache into a catalog service.
func openCatalog(ctx context.Context) (*catalog.Service, func(), error) {
	st, closeStore, err := store.Open(ctx, cfg.Database, logger.Named("store"))
	if err != nil {
		return nil, nil, err
	}

	c, closeCache, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	svc := catalog.NewService(st, c, ttl, logger.Named("catalog"))
	return svc, func() {
		closeCache()
		closeStore()
	}, nil
}
