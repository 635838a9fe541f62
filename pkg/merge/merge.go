// Package merge implements the item model's merge-and-trim algorithm
// (spec.md §4.2): deriving missing timestamps, concatenating fresh items
// ahead of the existing cache, optionally sorting, and capping at
// max-length.
package merge

import (
	"net/mail"
	"sort"

	"github.com/siriusmart/scrapyard/pkg/domain"
)

// DeriveTimestamps fills in Timestamp for any item that lacks one but has
// a PubDate that parses as RFC-2822 (spec.md §4.2 step 1). Items for which
// PubDate is absent or unparsable are left with no Timestamp.
func DeriveTimestamps(items []domain.Item) {
	for i := range items {
		if items[i].Timestamp != nil || items[i].PubDate == "" {
			continue
		}
		t, err := mail.ParseDate(items[i].PubDate)
		if err != nil {
			continue
		}
		ts := t.Unix()
		items[i].Timestamp = &ts
	}
}

// Merge implements spec.md §4.2 steps 2-4: concatenate fresh ahead of
// existing, optionally sort by descending timestamp (absent timestamps
// sort last, stable), then trim to maxLength. fresh is mutated in place by
// DeriveTimestamps before the caller invokes Merge; Merge itself performs
// no de-duplication — that is the extractor's responsibility via
// "preexists" (spec.md §4.2).
func Merge(fresh, existing []domain.Item, sortByTimestamp bool, maxLength int) []domain.Item {
	merged := make([]domain.Item, 0, len(fresh)+len(existing))
	merged = append(merged, fresh...)
	merged = append(merged, existing...)

	if sortByTimestamp {
		sort.SliceStable(merged, func(i, j int) bool {
			a, b := merged[i].Timestamp, merged[j].Timestamp
			switch {
			case a == nil && b == nil:
				return false
			case a == nil:
				return false // absent sorts last
			case b == nil:
				return true
			default:
				return *a > *b
			}
		})
	}

	if maxLength > 0 && len(merged) > maxLength {
		merged = merged[:maxLength]
	}
	return merged
}
