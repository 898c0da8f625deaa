package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the reference segments, products and rates into the store",
	Long: `Applies the schema and upserts the reference dataset. Running it twice
leaves the store unchanged.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// the memory driver seeds itself on open
	st, closeFn, err := store.Open(ctx, cfg.Database, logger.Named("store"))
	if err != nil {
		return err
	}
	defer closeFn()

	if err := store.Seed(ctx, st); err != nil {
		return err
	}

	segments, err := st.ListSegments(ctx)
	if err != nil {
		return err
	}
	rates, err := st.ListRates(ctx, model.RateFilter{})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d segments and %d rates\n", len(segments), len(rates))
	return nil
}
