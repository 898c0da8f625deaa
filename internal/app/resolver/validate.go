package resolver

import (
	"fmt"

	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
)

// Validate checks that every rate points at a segment of the catalog and that every person type with
// products has segments to classify into.
func Validate(segments []model.Segment, rates []model.Rate) error {
	known := make(map[model.PersonType]map[string]bool)
	for _, s := range segments {
		if known[s.PersonType] == nil {
			known[s.PersonType] = make(map[string]bool)
		}
		known[s.PersonType][s.Code] = true
	}

	for _, r := range rates {
		codes, ok := known[r.PersonType]
		if !ok {
			return fmt.Errorf("%w: %q", ErrNoSegments, r.PersonType)
		}
		if !codes[r.SegmentCode] {
			return fmt.Errorf("%w: rate %d references %q", ErrUnknownSegment, r.Id, r.SegmentCode)
		}
	}
	return nil
}
