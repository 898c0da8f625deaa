package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ymakhloufi/credit-simulator/internal/app/simulator"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/money"
)

var (
	simPersonType string
	simModality   string
	simProduct    string
	simIncome     string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Classify an income and look up the matching rate",
	Long: `Fills a simulation form from the flags and prints the resulting segment
and rate. Leaving --product empty lists the products offered for the
chosen person type and modality.`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simPersonType, "person-type", "t", "", "PF or PJ")
	simulateCmd.Flags().StringVarP(&simModality, "modality", "m", "", "Pre-fixado or Pos-fixado")
	simulateCmd.Flags().StringVarP(&simProduct, "product", "p", "", "product name")
	simulateCmd.Flags().StringVarP(&simIncome, "income", "i", "", "monthly income, e.g. \"R$ 1.000,00\"")

	simulateCmd.MarkFlagRequired("person-type")
	simulateCmd.MarkFlagRequired("modality")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	personType := model.PersonType(simPersonType)
	if !personType.Valid() {
		return fmt.Errorf("unsupported person type: %s (use PF or PJ)", simPersonType)
	}
	modality := model.Modality(simModality)
	if !modality.Valid() {
		return fmt.Errorf("unsupported modality: %s (use Pre-fixado or Pos-fixado)", simModality)
	}

	svc, closeFn, err := openCatalog(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	snap, err := svc.Snapshot(cmd.Context())
	if err != nil {
		return err
	}

	session := simulator.NewSession(snap, logger.Named("session"))
	session.SetPersonType(personType)
	session.SetModality(modality)
	session.SetProduct(simProduct)
	session.SetIncome(simIncome)

	out := cmd.OutOrStdout()
	if session.Product() == "" {
		fmt.Fprintf(out, "Available products: %s\n", strings.Join(session.AvailableProducts(), ", "))
		return nil
	}

	result, err := session.Result()
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Fprintln(out, "Enter a monthly income to simulate.")
		return nil
	}

	fmt.Fprintf(out, "Monthly income: %s\n", session.FormattedIncome())
	fmt.Fprintf(out, "Segment:        %s (%s)\n", result.Segment, result.SegmentCode)
	fmt.Fprintf(out, "Rate:           %s\n", money.FormatRate(result.Rate))
	if result.Error != "" {
		fmt.Fprintf(out, "Note:           %s\n", result.Error)
	}
	return nil
}
