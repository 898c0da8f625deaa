package model

const (
	PersonTypeIndividual PersonType = "PF"
	PersonTypeBusiness   PersonType = "PJ"

	ModalityFixed    Modality = "Pre-fixado"
	ModalityFloating Modality = "Pos-fixado"
)

type PersonType string
type Modality string

func (p PersonType) Valid() bool {
	return p == PersonTypeIndividual || p == PersonTypeBusiness
}

func (m Modality) Valid() bool {
	return m == ModalityFixed || m == ModalityFloating
}

// Segment is an income tier. MinAnnualIncome is the inclusive lower bound of the tier.
type Segment struct {
	Id              int64      `json:"Id"`
	Code            string     `json:"Code"`
	Name            string     `json:"Name"`
	PersonType      PersonType `json:"PersonType"`
	MinAnnualIncome float64    `json:"MinAnnualIncome"`
}

type Product struct {
	Id         int64      `json:"Id"`
	Name       string     `json:"Name"`
	PersonType PersonType `json:"PersonType"`
	Modality   Modality   `json:"Modality"`
}

// Rate is the interest rate of one (Product, Segment) pair, joined with the fields of both.
// A nil Rate means the product is not offered to that segment.
type Rate struct {
	Id          int64      `json:"Id"`
	ProductId   int64      `json:"ProductId"`
	SegmentId   int64      `json:"SegmentId"`
	Rate        *float64   `json:"Rate"`
	ProductName string     `json:"ProductName"`
	Modality    Modality   `json:"Modality"`
	PersonType  PersonType `json:"PersonType"`
	SegmentCode string     `json:"SegmentCode"`
	SegmentName string     `json:"SegmentName"`
}

// RateFilter narrows a rate listing to the given foreign keys. Nil fields do not filter.
type RateFilter struct {
	ProductId *int64
	SegmentId *int64
}

func (f RateFilter) Matches(r Rate) bool {
	if f.ProductId != nil && r.ProductId != *f.ProductId {
		return false
	}
	if f.SegmentId != nil && r.SegmentId != *f.SegmentId {
		return false
	}
	return true
}

type Result struct {
	Segment     string   `json:"segment"`
	SegmentCode string   `json:"segmentCode"`
	Rate        *float64 `json:"rate"`
	Error       string   `json:"error,omitempty"`
}
