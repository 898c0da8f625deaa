package store

import (
	"context"
	"errors"
	"testing"

	"github.com/ymakhloufi/credit-simulator/internal/pkg/config"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"go.uber.org/zap/zaptest"
)

func seededMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory(zaptest.NewLogger(t))
	if err := Seed(context.Background(), m); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return m
}

func TestMemory_SeedCounts(t *testing.T) {
	m := seededMemory(t)
	ctx := context.Background()

	segments, _ := m.ListSegments(ctx)
	if len(segments) != 8 {
		t.Errorf("expected 8 segments, got %d", len(segments))
	}
	products, _ := m.ListProducts(ctx)
	if len(products) != 16 {
		t.Errorf("expected 16 products, got %d", len(products))
	}
	rates, _ := m.ListRates(ctx, model.RateFilter{})
	if len(rates) != 64 {
		t.Errorf("expected 64 rates, got %d", len(rates))
	}
}

func TestMemory_SeedIsIdempotent(t *testing.T) {
	m := seededMemory(t)
	if err := Seed(context.Background(), m); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	rates, _ := m.ListRates(context.Background(), model.RateFilter{})
	if len(rates) != 64 {
		t.Errorf("expected reseeding to keep 64 rates, got %d", len(rates))
	}
}

func TestMemory_ListSegmentsOrder(t *testing.T) {
	segments, _ := seededMemory(t).ListSegments(context.Background())

	want := []string{"PF1", "PF2", "PF3", "PF4", "PJ1", "PJ2", "PJ3", "PJ4"}
	for i, code := range want {
		if segments[i].Code != code {
			t.Errorf("position %d: expected %s, got %s", i, code, segments[i].Code)
		}
	}
}

func TestMemory_ListProductsOrder(t *testing.T) {
	products, _ := seededMemory(t).ListProducts(context.Background())

	for i := 1; i < len(products); i++ {
		a, b := products[i-1], products[i]
		key := func(p model.Product) string {
			return string(p.PersonType) + "|" + string(p.Modality) + "|" + p.Name
		}
		if key(a) > key(b) {
			t.Errorf("products out of order: %q before %q", key(a), key(b))
		}
	}
	if products[0].PersonType != model.PersonTypeIndividual || products[0].Modality != model.ModalityFloating {
		t.Errorf("expected PF/Pos-fixado first, got %s/%s", products[0].PersonType, products[0].Modality)
	}
}

func TestMemory_ListRatesFilterAndOrder(t *testing.T) {
	m := seededMemory(t)
	ctx := context.Background()

	products, _ := m.ListProducts(ctx)
	var financiamento model.Product
	for _, p := range products {
		if p.Name == "Financiamento" && p.PersonType == model.PersonTypeIndividual && p.Modality == model.ModalityFixed {
			financiamento = p
		}
	}

	rates, err := m.ListRates(ctx, model.RateFilter{ProductId: &financiamento.Id})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 4 {
		t.Fatalf("expected 4 rates, got %d", len(rates))
	}
	wantCodes := []string{"PF1", "PF2", "PF3", "PF4"}
	for i, r := range rates {
		if r.SegmentCode != wantCodes[i] {
			t.Errorf("position %d: expected %s, got %s", i, wantCodes[i], r.SegmentCode)
		}
		if r.ProductName != "Financiamento" || r.Modality != model.ModalityFixed {
			t.Errorf("unexpected denormalized fields: %+v", r)
		}
	}

	segmentId := rates[1].SegmentId
	narrowed, _ := m.ListRates(ctx, model.RateFilter{ProductId: &financiamento.Id, SegmentId: &segmentId})
	if len(narrowed) != 1 || narrowed[0].Rate == nil || *narrowed[0].Rate != 0.09 {
		t.Errorf("expected single PF2 rate 0.09, got %+v", narrowed)
	}
}

func TestMemory_UpsertRateQuoteUnknownSegment(t *testing.T) {
	m := NewMemory(zaptest.NewLogger(t))

	err := m.UpsertRateQuote(context.Background(), model.RateQuote{
		PersonType:  model.PersonTypeIndividual,
		Modality:    model.ModalityFixed,
		ProductName: "Financiamento",
		SegmentCode: "PF9",
	})
	if !errors.Is(err, ErrSegmentNotFound) {
		t.Errorf("expected ErrSegmentNotFound, got %v", err)
	}
}

func TestMemory_UpsertRateQuoteReplacesRate(t *testing.T) {
	m := seededMemory(t)
	ctx := context.Background()

	rate := 0.11
	err := m.UpsertRateQuote(ctx, model.RateQuote{
		PersonType:  model.PersonTypeIndividual,
		Modality:    model.ModalityFixed,
		ProductName: "Sicoob engecred consignado",
		SegmentCode: "PF1",
		Rate:        &rate,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rates, _ := m.ListRates(ctx, model.RateFilter{})
	found := 0
	for _, r := range rates {
		if r.ProductName == "Sicoob engecred consignado" && r.Modality == model.ModalityFixed && r.SegmentCode == "PF1" {
			found++
			if r.Rate == nil || *r.Rate != 0.11 {
				t.Errorf("expected rate 0.11, got %v", r.Rate)
			}
		}
	}
	if found != 1 {
		t.Errorf("expected exactly one rate record, got %d", found)
	}
}

func TestOpen_Memory(t *testing.T) {
	catalog, closeFn, err := Open(context.Background(), config.DatabaseConfig{Driver: config.DriverMemory}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()

	segments, _ := catalog.ListSegments(context.Background())
	if len(segments) != len(SeedSegments) {
		t.Errorf("expected a seeded store, got %d segments", len(segments))
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, _, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite"}, zaptest.NewLogger(t)); err == nil {
		t.Error("expected an error")
	}
}
