package store

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"go.uber.org/zap/zaptest"
)

func TestBuildRatesQuery(t *testing.T) {
	productId, segmentId := int64(3), int64(7)

	tests := []struct {
		name      string
		filter    model.RateFilter
		wantWhere string
		wantArgs  int
	}{
		{name: "no filter", filter: model.RateFilter{}, wantWhere: "", wantArgs: 0},
		{name: "product only", filter: model.RateFilter{ProductId: &productId}, wantWhere: "WHERE r.product_id = $1", wantArgs: 1},
		{name: "segment only", filter: model.RateFilter{SegmentId: &segmentId}, wantWhere: "WHERE r.segment_id = $1", wantArgs: 1},
		{name: "both", filter: model.RateFilter{ProductId: &productId, SegmentId: &segmentId}, wantWhere: "WHERE r.product_id = $1 AND r.segment_id = $2", wantArgs: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildRatesQuery(tt.filter)
			if len(args) != tt.wantArgs {
				t.Errorf("expected %d args, got %d", tt.wantArgs, len(args))
			}
			if tt.wantWhere == "" && strings.Contains(query, "WHERE") {
				t.Errorf("unexpected WHERE clause in %q", query)
			}
			if tt.wantWhere != "" && !strings.Contains(query, tt.wantWhere) {
				t.Errorf("expected %q in %q", tt.wantWhere, query)
			}
			if !strings.HasSuffix(query, "ORDER BY p.person_type, p.modality, p.name, s.min_annual_income") {
				t.Errorf("rates query must end with the catalog order, got %q", query)
			}
		})
	}
}

func TestPostgres_Integration(t *testing.T) {
	url := os.Getenv("SIMULATOR_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SIMULATOR_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, url, 2)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	pg := NewPostgres(pool, zaptest.NewLogger(t))
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := Seed(ctx, pg); err != nil {
		t.Fatalf("seed: %v", err)
	}

	segments, err := pg.ListSegments(ctx)
	if err != nil {
		t.Fatalf("list segments: %v", err)
	}
	if len(segments) < 8 {
		t.Errorf("expected at least 8 segments, got %d", len(segments))
	}

	rates, err := pg.ListRates(ctx, model.RateFilter{})
	if err != nil {
		t.Fatalf("list rates: %v", err)
	}
	nullRates := 0
	for _, r := range rates {
		if r.ProductName == "Sicoob engecred consignado" && r.Modality == model.ModalityFixed && r.Rate == nil {
			nullRates++
		}
	}
	if nullRates != 4 {
		t.Errorf("expected 4 null rates for the consignado product, got %d", nullRates)
	}
}
