package model

import (
	"time"

	"cloud.google.com/go/civil"
)

type Source string

// RateQuote is a single published rate as read from a rate source, before it is linked to catalog ids.
// Source, QuotedOn and LastCrawledAt only describe the crawl for logging; stores keep the rate alone.
type RateQuote struct {
	Source        Source
	PersonType    PersonType
	Modality      Modality
	ProductName   string
	SegmentCode   string
	Rate          *float64
	QuotedOn      civil.Date
	LastCrawledAt time.Time
}
