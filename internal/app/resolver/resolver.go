package resolver

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
)

// UnavailableMessage is reported when a product has no rate for the client's segment.
const UnavailableMessage = "Produto nao disponivel para este segmento"

var (
	ErrNoSegments     = errors.New("no segments configured for person type")
	ErrUnknownSegment = errors.New("segment code not found in catalog")
)

var monthsPerYear = decimal.NewFromInt(12)

type Input struct {
	PersonType    model.PersonType
	Modality      model.Modality
	ProductName   string
	MonthlyIncome decimal.Decimal
}

// Complete reports whether every field needed for a resolution is filled in.
func (in Input) Complete() bool {
	return in.PersonType != "" && in.Modality != "" && in.ProductName != "" && !in.MonthlyIncome.IsZero()
}

// Classify returns the code of the segment whose income range contains annualIncome.
func Classify(personType model.PersonType, annualIncome decimal.Decimal, segments []model.Segment) (string, error) {
	tiers := segmentsFor(personType, segments)
	if len(tiers) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoSegments, personType)
	}

	for i := len(tiers) - 1; i >= 0; i-- {
		if decimal.NewFromFloat(tiers[i].MinAnnualIncome).LessThanOrEqual(annualIncome) {
			return tiers[i].Code, nil
		}
	}

	// only reachable for incomes below the catch-all tier
	return tiers[0].Code, nil
}

// AvailableProducts lists, in catalog order, the products of the selection that have at least one rate set.
func AvailableProducts(personType model.PersonType, modality model.Modality, products []model.Product, rates []model.Rate) []string {
	names := []string{}
	if personType == "" || modality == "" {
		return names
	}

	offered := make(map[string]bool)
	for _, r := range rates {
		if r.PersonType == personType && r.Modality == modality && r.Rate != nil {
			offered[r.ProductName] = true
		}
	}

	seen := make(map[string]bool)
	for _, p := range products {
		if p.PersonType != personType || p.Modality != modality {
			continue
		}
		if offered[p.Name] && !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	return names
}

// Resolve classifies the client and looks up the rate of the selected product. An incomplete input
// yields a nil Result and no error. Errors are only returned for an inconsistent catalog.
func Resolve(in Input, segments []model.Segment, rates []model.Rate) (*model.Result, error) {
	if !in.Complete() {
		return nil, nil
	}

	monthly := in.MonthlyIncome
	if monthly.IsNegative() {
		monthly = decimal.Zero
	}
	annual := monthly.Mul(monthsPerYear)

	code, err := Classify(in.PersonType, annual, segments)
	if err != nil {
		return nil, fmt.Errorf("failed to classify income: %w", err)
	}

	segment, ok := findSegment(code, in.PersonType, segments)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSegment, code)
	}

	result := &model.Result{
		Segment:     segment.Name,
		SegmentCode: segment.Code,
	}

	rate, ok := findRate(in, code, rates)
	if !ok || rate.Rate == nil {
		result.Error = UnavailableMessage
		return result, nil
	}

	value := *rate.Rate
	result.Rate = &value
	return result, nil
}

func segmentsFor(personType model.PersonType, segments []model.Segment) []model.Segment {
	out := make([]model.Segment, 0, len(segments))
	for _, s := range segments {
		if s.PersonType == personType {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinAnnualIncome < out[j].MinAnnualIncome
	})
	return out
}

func findSegment(code string, personType model.PersonType, segments []model.Segment) (model.Segment, bool) {
	for _, s := range segments {
		if s.Code == code && s.PersonType == personType {
			return s, true
		}
	}
	return model.Segment{}, false
}

func findRate(in Input, segmentCode string, rates []model.Rate) (model.Rate, bool) {
	for _, r := range rates {
		if r.ProductName == in.ProductName &&
			r.SegmentCode == segmentCode &&
			r.PersonType == in.PersonType &&
			r.Modality == in.Modality {
			return r, true
		}
	}
	return model.Rate{}, false
}
