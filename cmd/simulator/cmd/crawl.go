package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ymakhloufi/credit-simulator/internal/app/crawler"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/store"
)

var (
	crawlSources     []string
	crawlIncludeSeed bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Import rate tables into the store",
	Long: `Reads every configured source (an http(s) URL or a local HTML file holding
tables marked with data-person-type and data-modality) and upserts the
rates it finds. Segments must already exist in the store.`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringSliceVar(&crawlSources, "source", nil, "rate table URL or file, overrides crawler.sources")
	crawlCmd.Flags().BoolVar(&crawlIncludeSeed, "include-seed", false, "also replay the reference rates")
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sources := cfg.Crawler.Sources
	if len(crawlSources) > 0 {
		sources = crawlSources
	}

	var crawlers []crawler.SiteCrawler
	for _, src := range sources {
		crawlers = append(crawlers, crawler.NewHTMLTableCrawler(src, logger.Named("HTMLTableCrawler")))
	}
	if crawlIncludeSeed {
		crawlers = append(crawlers, crawler.NewStaticCrawler(store.SeedRateQuotes(), logger.Named("StaticCrawler")))
	}
	if len(crawlers) == 0 {
		return errors.New("nothing to crawl: set crawler.sources, --source or --include-seed")
	}

	st, closeFn, err := store.Open(ctx, cfg.Database, logger.Named("store"))
	if err != nil {
		return err
	}
	defer closeFn()

	stats := crawler.NewService(st, crawlers, logger.Named("crawler")).Crawl(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "upserted %d rates, %d failed\n", stats.Upserted, stats.Failed)
	return nil
}
