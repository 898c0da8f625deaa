package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"go.uber.org/zap"
)

var ErrSegmentNotFound = errors.New("segment not found")

type rateRow struct {
	id        int64
	productId int64
	segmentId int64
	rate      *float64
}

// Memory is an in-process catalog. It answers the same queries as Postgres, in the same order.
type Memory struct {
	mu       sync.RWMutex
	segments []model.Segment
	products []model.Product
	rates    []rateRow
	nextId   int64
	logger   *zap.Logger
}

func NewMemory(logger *zap.Logger) *Memory {
	return &Memory{logger: logger}
}

func (m *Memory) UpsertSegment(_ context.Context, segment model.Segment) (model.Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.segments {
		if s.Code == segment.Code {
			segment.Id = s.Id
			m.segments[i] = segment
			return segment, nil
		}
	}

	m.nextId++
	segment.Id = m.nextId
	m.segments = append(m.segments, segment)
	m.logger.Debug("inserted segment", zap.String("code", segment.Code), zap.Int64("id", segment.Id))
	return segment, nil
}

func (m *Memory) UpsertRateQuote(_ context.Context, quote model.RateQuote) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	segmentId := int64(0)
	for _, s := range m.segments {
		if s.Code == quote.SegmentCode && s.PersonType == quote.PersonType {
			segmentId = s.Id
			break
		}
	}
	if segmentId == 0 {
		return fmt.Errorf("%w: %s/%s", ErrSegmentNotFound, quote.PersonType, quote.SegmentCode)
	}

	productId := m.upsertProduct(quote.PersonType, quote.Modality, quote.ProductName)

	for i, row := range m.rates {
		if row.productId == productId && row.segmentId == segmentId {
			m.rates[i].rate = copyRate(quote.Rate)
			return nil
		}
	}

	m.nextId++
	m.rates = append(m.rates, rateRow{
		id:        m.nextId,
		productId: productId,
		segmentId: segmentId,
		rate:      copyRate(quote.Rate),
	})
	return nil
}

func (m *Memory) upsertProduct(personType model.PersonType, modality model.Modality, name string) int64 {
	for _, p := range m.products {
		if p.Name == name && p.PersonType == personType && p.Modality == modality {
			return p.Id
		}
	}

	m.nextId++
	m.products = append(m.products, model.Product{
		Id:         m.nextId,
		Name:       name,
		PersonType: personType,
		Modality:   modality,
	})
	m.logger.Debug("inserted product", zap.String("name", name), zap.Int64("id", m.nextId))
	return m.nextId
}

func (m *Memory) ListProducts(_ context.Context) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append([]model.Product{}, m.products...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PersonType != b.PersonType {
			return a.PersonType < b.PersonType
		}
		if a.Modality != b.Modality {
			return a.Modality < b.Modality
		}
		return a.Name < b.Name
	})
	return out, nil
}

func (m *Memory) ListSegments(_ context.Context) ([]model.Segment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append([]model.Segment{}, m.segments...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PersonType != out[j].PersonType {
			return out[i].PersonType < out[j].PersonType
		}
		return out[i].MinAnnualIncome < out[j].MinAnnualIncome
	})
	return out, nil
}

func (m *Memory) ListRates(_ context.Context, filter model.RateFilter) ([]model.Rate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make(map[int64]model.Product, len(m.products))
	for _, p := range m.products {
		products[p.Id] = p
	}
	segments := make(map[int64]model.Segment, len(m.segments))
	for _, s := range m.segments {
		segments[s.Id] = s
	}

	out := make([]model.Rate, 0, len(m.rates))
	minIncome := make(map[int64]float64, len(m.rates))
	for _, row := range m.rates {
		p, ok := products[row.productId]
		if !ok {
			continue
		}
		s, ok := segments[row.segmentId]
		if !ok {
			continue
		}

		rate := model.Rate{
			Id:          row.id,
			ProductId:   row.productId,
			SegmentId:   row.segmentId,
			Rate:        copyRate(row.rate),
			ProductName: p.Name,
			Modality:    p.Modality,
			PersonType:  p.PersonType,
			SegmentCode: s.Code,
			SegmentName: s.Name,
		}
		if !filter.Matches(rate) {
			continue
		}
		minIncome[rate.Id] = s.MinAnnualIncome
		out = append(out, rate)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PersonType != b.PersonType {
			return a.PersonType < b.PersonType
		}
		if a.Modality != b.Modality {
			return a.Modality < b.Modality
		}
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		return minIncome[a.Id] < minIncome[b.Id]
	})
	return out, nil
}

func copyRate(rate *float64) *float64 {
	if rate == nil {
		return nil
	}
	v := *rate
	return &v
}
