package resolver

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/money"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/store"
	"go.uber.org/zap"
)

type catalog struct {
	segments []model.Segment
	products []model.Product
	rates    []model.Rate
}

func seedCatalog(t *testing.T) catalog {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory(zap.NewNop())
	if err := store.Seed(ctx, m); err != nil {
		t.Fatalf("seed: %v", err)
	}
	segments, _ := m.ListSegments(ctx)
	products, _ := m.ListProducts(ctx)
	rates, _ := m.ListRates(ctx, model.RateFilter{})
	return catalog{segments: segments, products: products, rates: rates}
}

func TestClassify(t *testing.T) {
	c := seedCatalog(t)

	tests := []struct {
		name       string
		personType model.PersonType
		income     string
		want       string
	}{
		{"PF zero", model.PersonTypeIndividual, "0", "PF1"},
		{"PF just below PF2", model.PersonTypeIndividual, "1999.99", "PF1"},
		{"PF boundary PF2", model.PersonTypeIndividual, "2000", "PF2"},
		{"PF twelve thousand", model.PersonTypeIndividual, "12000", "PF2"},
		{"PF boundary PF3", model.PersonTypeIndividual, "20000", "PF3"},
		{"PF boundary PF4", model.PersonTypeIndividual, "200000", "PF4"},
		{"PF very high", model.PersonTypeIndividual, "999999999", "PF4"},
		{"PJ zero", model.PersonTypeBusiness, "0", "PJ1"},
		{"PJ boundary PJ2", model.PersonTypeBusiness, "4000", "PJ2"},
		{"PJ boundary PJ3", model.PersonTypeBusiness, "400000", "PJ3"},
		{"PJ just below PJ4", model.PersonTypeBusiness, "39999999.99", "PJ3"},
		{"PJ fifty million", model.PersonTypeBusiness, "50000000", "PJ4"},
		{"negative falls back to catch-all", model.PersonTypeBusiness, "-1", "PJ1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.personType, decimal.RequireFromString(tt.income), c.segments)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify(%s, %s) = %s, want %s", tt.personType, tt.income, got, tt.want)
			}
		})
	}
}

func TestClassify_ResultLiesWithinTier(t *testing.T) {
	c := seedCatalog(t)

	for _, pt := range []model.PersonType{model.PersonTypeIndividual, model.PersonTypeBusiness} {
		tiers := segmentsFor(pt, c.segments)
		for income := int64(0); income <= 50_000_000; income += 1_237 {
			annual := decimal.NewFromInt(income)
			code, err := Classify(pt, annual, c.segments)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i, tier := range tiers {
				if tier.Code != code {
					continue
				}
				if decimal.NewFromFloat(tier.MinAnnualIncome).GreaterThan(annual) {
					t.Fatalf("%s: income %d below threshold of %s", pt, income, code)
				}
				if i+1 < len(tiers) && decimal.NewFromFloat(tiers[i+1].MinAnnualIncome).LessThanOrEqual(annual) {
					t.Fatalf("%s: income %d belongs above %s", pt, income, code)
				}
			}
		}
	}
}

func TestClassify_UnorderedInput(t *testing.T) {
	segments := []model.Segment{
		{Code: "PF3", PersonType: model.PersonTypeIndividual, MinAnnualIncome: 20000},
		{Code: "PJ1", PersonType: model.PersonTypeBusiness, MinAnnualIncome: 0},
		{Code: "PF1", PersonType: model.PersonTypeIndividual, MinAnnualIncome: 0},
		{Code: "PF2", PersonType: model.PersonTypeIndividual, MinAnnualIncome: 2000},
	}

	got, err := Classify(model.PersonTypeIndividual, decimal.NewFromInt(5000), segments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "PF2" {
		t.Errorf("expected PF2, got %s", got)
	}
}

func TestClassify_NoSegments(t *testing.T) {
	segments := []model.Segment{{Code: "PF1", PersonType: model.PersonTypeIndividual}}

	_, err := Classify(model.PersonTypeBusiness, decimal.NewFromInt(100), segments)
	if !errors.Is(err, ErrNoSegments) {
		t.Errorf("expected ErrNoSegments, got %v", err)
	}
}

func TestAvailableProducts(t *testing.T) {
	c := seedCatalog(t)

	tests := []struct {
		name       string
		personType model.PersonType
		modality   model.Modality
		want       []string
	}{
		{
			name:       "PF fixed excludes product without rates",
			personType: model.PersonTypeIndividual,
			modality:   model.ModalityFixed,
			want:       []string{"Emprestimo pessoal", "Financiamento", "Imoveis"},
		},
		{
			name:       "PF floating includes consignado",
			personType: model.PersonTypeIndividual,
			modality:   model.ModalityFloating,
			want:       []string{"Emprestimo pessoal", "Financiamento", "Imoveis", "Sicoob engecred consignado"},
		},
		{
			name:       "PJ fixed",
			personType: model.PersonTypeBusiness,
			modality:   model.ModalityFixed,
			want:       []string{"Credito rural", "Emprestimo pessoal", "Financiamento", "Imóveis"},
		},
		{name: "missing person type", modality: model.ModalityFixed, want: []string{}},
		{name: "missing modality", personType: model.PersonTypeBusiness, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AvailableProducts(tt.personType, tt.modality, c.products, c.rates)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			again := AvailableProducts(tt.personType, tt.modality, c.products, c.rates)
			if !reflect.DeepEqual(got, again) {
				t.Errorf("second call differs: %v vs %v", got, again)
			}
		})
	}
}

func TestAvailableProducts_SingleNonNullRate(t *testing.T) {
	rate := 0.02
	products := []model.Product{{Name: "Leasing", PersonType: model.PersonTypeBusiness, Modality: model.ModalityFixed}}
	rates := []model.Rate{
		{ProductName: "Leasing", PersonType: model.PersonTypeBusiness, Modality: model.ModalityFixed, SegmentCode: "PJ1"},
		{ProductName: "Leasing", PersonType: model.PersonTypeBusiness, Modality: model.ModalityFixed, SegmentCode: "PJ2", Rate: &rate},
		{ProductName: "Leasing", PersonType: model.PersonTypeBusiness, Modality: model.ModalityFloating, SegmentCode: "PJ2", Rate: &rate},
	}

	got := AvailableProducts(model.PersonTypeBusiness, model.ModalityFixed, products, rates)
	if !reflect.DeepEqual(got, []string{"Leasing"}) {
		t.Errorf("expected [Leasing], got %v", got)
	}

	rates[1].Rate = nil
	got = AvailableProducts(model.PersonTypeBusiness, model.ModalityFixed, products, rates)
	if len(got) != 0 {
		t.Errorf("rate of another modality must not count, got %v", got)
	}
}

func TestResolve_ScenarioA(t *testing.T) {
	c := seedCatalog(t)

	result, err := Resolve(Input{
		PersonType:    model.PersonTypeIndividual,
		Modality:      model.ModalityFixed,
		ProductName:   "Financiamento",
		MonthlyIncome: money.ParseCurrency("1.000,00"),
	}, c.segments, c.rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.SegmentCode != "PF2" || result.Segment != "Intermediario" {
		t.Errorf("expected PF2/Intermediario, got %s/%s", result.SegmentCode, result.Segment)
	}
	if result.Rate == nil || *result.Rate != 0.09 {
		t.Errorf("expected rate 0.09, got %v", result.Rate)
	}
	if result.Error != "" {
		t.Errorf("expected no error message, got %q", result.Error)
	}
}

func TestResolve_ScenarioB(t *testing.T) {
	c := seedCatalog(t)

	for _, income := range []string{"1,00", "1.000,00", "100.000,00"} {
		result, err := Resolve(Input{
			PersonType:    model.PersonTypeIndividual,
			Modality:      model.ModalityFixed,
			ProductName:   "Sicoob engecred consignado",
			MonthlyIncome: money.ParseCurrency(income),
		}, c.segments, c.rates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Rate != nil {
			t.Errorf("income %s: expected no rate, got %v", income, *result.Rate)
		}
		if result.Error != UnavailableMessage {
			t.Errorf("income %s: expected unavailable message, got %q", income, result.Error)
		}
	}
}

func TestResolve_UnknownProduct(t *testing.T) {
	c := seedCatalog(t)

	result, err := Resolve(Input{
		PersonType:    model.PersonTypeBusiness,
		Modality:      model.ModalityFloating,
		ProductName:   "Cartao",
		MonthlyIncome: decimal.NewFromInt(5000),
	}, c.segments, c.rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SegmentCode != "PJ2" || result.Error != UnavailableMessage || result.Rate != nil {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestResolve_IncompleteInput(t *testing.T) {
	c := seedCatalog(t)
	full := Input{
		PersonType:    model.PersonTypeIndividual,
		Modality:      model.ModalityFixed,
		ProductName:   "Financiamento",
		MonthlyIncome: decimal.NewFromInt(1000),
	}

	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"person type", func(in *Input) { in.PersonType = "" }},
		{"modality", func(in *Input) { in.Modality = "" }},
		{"product", func(in *Input) { in.ProductName = "" }},
		{"income", func(in *Input) { in.MonthlyIncome = decimal.Zero }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := full
			tt.mutate(&in)
			result, err := Resolve(in, c.segments, c.rates)
			if err != nil || result != nil {
				t.Errorf("expected nil result and nil error, got %+v, %v", result, err)
			}
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	c := seedCatalog(t)
	in := Input{
		PersonType:    model.PersonTypeBusiness,
		Modality:      model.ModalityFloating,
		ProductName:   "Credito rural",
		MonthlyIncome: decimal.NewFromInt(50_000),
	}

	first, err := Resolve(in, c.segments, c.rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := Resolve(in, c.segments, c.rates)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
	if *first.Rate != 0.005 || first.SegmentCode != "PJ3" {
		t.Errorf("unexpected result %+v", first)
	}
}

func TestResolve_MissingSegments(t *testing.T) {
	_, err := Resolve(Input{
		PersonType:    model.PersonTypeBusiness,
		Modality:      model.ModalityFixed,
		ProductName:   "Financiamento",
		MonthlyIncome: decimal.NewFromInt(1000),
	}, nil, nil)
	if !errors.Is(err, ErrNoSegments) {
		t.Errorf("expected ErrNoSegments, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	c := seedCatalog(t)
	if err := Validate(c.segments, c.rates); err != nil {
		t.Fatalf("seed catalog should be valid: %v", err)
	}

	broken := append([]model.Rate{}, c.rates...)
	broken = append(broken, model.Rate{Id: 999, PersonType: model.PersonTypeIndividual, SegmentCode: "PF9"})
	if err := Validate(c.segments, broken); !errors.Is(err, ErrUnknownSegment) {
		t.Errorf("expected ErrUnknownSegment, got %v", err)
	}

	if err := Validate(nil, c.rates); !errors.Is(err, ErrNoSegments) {
		t.Errorf("expected ErrNoSegments, got %v", err)
	}
}
