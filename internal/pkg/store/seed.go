package store

import (
	"context"
	"fmt"

	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
)

const SeedSource model.Source = "seed"

type Seeder interface {
	UpsertSegment(ctx context.Context, segment model.Segment) (model.Segment, error)
	UpsertRateQuote(ctx context.Context, quote model.RateQuote) error
}

// SeedSegments are the income tiers the simulator ships with.
var SeedSegments = []model.Segment{
	{Code: "PF1", Name: "Basico", PersonType: model.PersonTypeIndividual, MinAnnualIncome: 0},
	{Code: "PF2", Name: "Intermediario", PersonType: model.PersonTypeIndividual, MinAnnualIncome: 2000},
	{Code: "PF3", Name: "Premium", PersonType: model.PersonTypeIndividual, MinAnnualIncome: 20000},
	{Code: "PF4", Name: "Black", PersonType: model.PersonTypeIndividual, MinAnnualIncome: 200000},
	{Code: "PJ1", Name: "MEI", PersonType: model.PersonTypeBusiness, MinAnnualIncome: 0},
	{Code: "PJ2", Name: "Empresarial", PersonType: model.PersonTypeBusiness, MinAnnualIncome: 4000},
	{Code: "PJ3", Name: "Corporativo", PersonType: model.PersonTypeBusiness, MinAnnualIncome: 400000},
	{Code: "PJ4", Name: "Enterprise", PersonType: model.PersonTypeBusiness, MinAnnualIncome: 40000000},
}

type seedProduct struct {
	personType model.PersonType
	modality   model.Modality
	name       string
	rates      []*float64 // one per tier, lowest first
}

func ratePtr(v float64) *float64 { return &v }

var seedProducts = []seedProduct{
	{model.PersonTypeIndividual, model.ModalityFixed, "Financiamento", []*float64{ratePtr(0.1), ratePtr(0.09), ratePtr(0.08), ratePtr(0.07)}},
	{model.PersonTypeIndividual, model.ModalityFixed, "Sicoob engecred consignado", []*float64{nil, nil, nil, nil}},
	{model.PersonTypeIndividual, model.ModalityFixed, "Emprestimo pessoal", []*float64{ratePtr(0.09), ratePtr(0.08), ratePtr(0.07), ratePtr(0.06)}},
	{model.PersonTypeIndividual, model.ModalityFixed, "Imoveis", []*float64{ratePtr(0.2), ratePtr(0.25), ratePtr(0.3), ratePtr(0.35)}},
	{model.PersonTypeIndividual, model.ModalityFloating, "Financiamento", []*float64{ratePtr(0.06), ratePtr(0.05), ratePtr(0.04), ratePtr(0.03)}},
	{model.PersonTypeIndividual, model.ModalityFloating, "Sicoob engecred consignado", []*float64{ratePtr(0.05), ratePtr(0.04), ratePtr(0.03), ratePtr(0.02)}},
	{model.PersonTypeIndividual, model.ModalityFloating, "Emprestimo pessoal", []*float64{ratePtr(0.05), ratePtr(0.04), ratePtr(0.03), ratePtr(0.02)}},
	{model.PersonTypeIndividual, model.ModalityFloating, "Imoveis", []*float64{ratePtr(0.4), ratePtr(0.45), ratePtr(0.5), ratePtr(0.55)}},
	{model.PersonTypeBusiness, model.ModalityFixed, "Financiamento", []*float64{ratePtr(0.1), ratePtr(0.09), ratePtr(0.08), ratePtr(0.07)}},
	{model.PersonTypeBusiness, model.ModalityFixed, "Credito rural", []*float64{ratePtr(0.05), ratePtr(0.04), ratePtr(0.03), ratePtr(0.02)}},
	{model.PersonTypeBusiness, model.ModalityFixed, "Emprestimo pessoal", []*float64{ratePtr(0.09), ratePtr(0.08), ratePtr(0.07), ratePtr(0.06)}},
	{model.PersonTypeBusiness, model.ModalityFixed, "Imóveis", []*float64{ratePtr(0.2), ratePtr(0.25), ratePtr(0.3), ratePtr(0.35)}},
	{model.PersonTypeBusiness, model.ModalityFloating, "Financiamento", []*float64{ratePtr(0.06), ratePtr(0.05), ratePtr(0.04), ratePtr(0.03)}},
	{model.PersonTypeBusiness, model.ModalityFloating, "Credito rural", []*float64{ratePtr(0.01), ratePtr(0.005), ratePtr(0.005), ratePtr(0.003)}},
	{model.PersonTypeBusiness, model.ModalityFloating, "Emprestimo pessoal", []*float64{ratePtr(0.05), ratePtr(0.04), ratePtr(0.03), ratePtr(0.02)}},
	{model.PersonTypeBusiness, model.ModalityFloating, "Imóveis", []*float64{ratePtr(0.4), ratePtr(0.45), ratePtr(0.5), ratePtr(0.55)}},
}

// SeedRateQuotes expands the built-in product table into one quote per product and tier.
func SeedRateQuotes() []model.RateQuote {
	quotes := make([]model.RateQuote, 0, len(seedProducts)*4)
	for _, p := range seedProducts {
		tiers := seedTiers(p.personType)
		for i, rate := range p.rates {
			quotes = append(quotes, model.RateQuote{
				Source:      SeedSource,
				PersonType:  p.personType,
				Modality:    p.modality,
				ProductName: p.name,
				SegmentCode: tiers[i].Code,
				Rate:        rate,
			})
		}
	}
	return quotes
}

// Seed loads the built-in segments first, since rate quotes are linked to them by code.
func Seed(ctx context.Context, s Seeder) error {
	for _, segment := range SeedSegments {
		if _, err := s.UpsertSegment(ctx, segment); err != nil {
			return fmt.Errorf("failed to seed segment %s: %w", segment.Code, err)
		}
	}
	for _, quote := range SeedRateQuotes() {
		if err := s.UpsertRateQuote(ctx, quote); err != nil {
			return fmt.Errorf("failed to seed rate %s/%s/%s: %w", quote.ProductName, quote.Modality, quote.SegmentCode, err)
		}
	}
	return nil
}

func seedTiers(personType model.PersonType) []model.Segment {
	out := make([]model.Segment, 0, 4)
	for _, s := range SeedSegments {
		if s.PersonType == personType {
			out = append(out, s)
		}
	}
	return out
}
