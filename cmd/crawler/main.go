package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/ymakhloufi/credit-simulator/internal/app/crawler"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/config"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/logging"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/store"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run crawls every configured source and returns the process exit code: 1 when any quote failed to upsert.
func run(args []string) int {
	flags := flag.NewFlagSet("crawler", flag.ExitOnError)
	configFile := flags.String("config", "", "config file")
	noErr(flags.Parse(args))

	cfg, err := config.Load(*configFile)
	noErr(err)

	logger := logging.New(cfg.Logging)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	crawlers := []crawler.SiteCrawler{
		//crawler.NewStaticCrawler(store.SeedRateQuotes(), logger.Named("StaticCrawler")),
	}
	for _, src := range cfg.Crawler.Sources {
		crawlers = append(crawlers, crawler.NewHTMLTableCrawler(src, logger.Named("HTMLTableCrawler")))
	}

	st, closeStore, err := store.Open(ctx, cfg.Database, logger.Named("Store"))
	noErr(err)
	defer closeStore()

	svc := crawler.NewService(st, crawlers, logger.Named("Crawler Svc"))

	if stats := svc.Crawl(ctx); stats.Failed > 0 {
		return 1
	}
	return 0
}

func noErr(err error) {
	if err != nil {
		panic("failed to initialize something important: " + err.Error())
	}
}
