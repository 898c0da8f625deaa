package simulator

import (
	"github.com/shopspring/decimal"
	"github.com/ymakhloufi/credit-simulator/internal/app/catalog"
	"github.com/ymakhloufi/credit-simulator/internal/app/resolver"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/money"
	"go.uber.org/zap"
)

// Session holds the simulation form. Upstream selections void the ones that depend on them:
// a new person type clears modality and product, a new modality clears product. The result is
// recomputed after every change.
type Session struct {
	snapshot catalog.Snapshot
	logger   *zap.Logger

	personType model.PersonType
	modality   model.Modality
	product    string
	income     string

	result *model.Result
	err    error
}

func NewSession(snapshot catalog.Snapshot, logger *zap.Logger) *Session {
	return &Session{snapshot: snapshot, logger: logger}
}

func (s *Session) SetPersonType(personType model.PersonType) {
	if personType != "" && personType != s.personType {
		s.modality = ""
		s.product = ""
		s.result = nil
	}
	s.personType = personType
	s.recompute()
}

func (s *Session) SetModality(modality model.Modality) {
	if modality != "" && modality != s.modality {
		s.product = ""
		s.result = nil
	}
	s.modality = modality
	s.recompute()
}

func (s *Session) SetProduct(product string) {
	s.product = product
	s.recompute()
}

// SetIncome takes the monthly income as typed, in any currency notation.
func (s *Session) SetIncome(income string) {
	s.income = income
	s.recompute()
}

func (s *Session) PersonType() model.PersonType { return s.personType }
func (s *Session) Modality() model.Modality     { return s.modality }
func (s *Session) Product() string              { return s.product }

func (s *Session) MonthlyIncome() decimal.Decimal {
	return money.ParseCurrency(s.income)
}

// FormattedIncome renders the income the way the form displays it.
func (s *Session) FormattedIncome() string {
	if s.income == "" {
		return ""
	}
	return money.FormatBRL(s.MonthlyIncome())
}

// AvailableProducts lists the products that can be picked for the current person type and modality.
func (s *Session) AvailableProducts() []string {
	return resolver.AvailableProducts(s.personType, s.modality, s.snapshot.Products, s.snapshot.Rates)
}

// Result is nil while the form is incomplete. A non-nil error means the catalog is inconsistent.
func (s *Session) Result() (*model.Result, error) {
	return s.result, s.err
}

func (s *Session) recompute() {
	s.result, s.err = nil, nil
	if s.income == "" {
		return
	}

	result, err := resolver.Resolve(resolver.Input{
		PersonType:    s.personType,
		Modality:      s.modality,
		ProductName:   s.product,
		MonthlyIncome: s.MonthlyIncome(),
	}, s.snapshot.Segments, s.snapshot.Rates)
	if err != nil {
		s.logger.Error("failed to resolve rate", zap.Error(err))
		s.err = err
		return
	}

	s.result = result
	if result != nil {
		s.logger.Debug("resolved rate",
			zap.String("segment", result.SegmentCode),
			zap.String("product", s.product),
			zap.Any("rate", result.Rate))
	}
}
