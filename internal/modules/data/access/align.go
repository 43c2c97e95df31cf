package access

import (
	"github.com/aristath/quantlab-go/internal/modules/data/identity"
)

// resolveDuplicates collapses raw provider points sharing a calendar date
// per discipline, keyed by "YYYY-MM-DD". ERROR discipline fails if any date
// repeats.
func resolveDuplicates(points []PricePoint, discipline string) (map[string]float64, error) {
	byDate := make(map[string]float64, len(points))
	seenOrder := make(map[string]int, len(points))

	for i, pt := range points {
		key := identity.FormatDate(pt.Date)
		if _, dup := seenOrder[key]; !dup {
			seenOrder[key] = i
			byDate[key] = pt.Value
			continue
		}
		switch discipline {
		case "FIRST":
			// keep the first-seen value, ignore this one
		case "ERROR":
			return nil, newValidationError("duplicate date in provider series", map[string]any{"date": key})
		default: // "LAST" and unset default to last-write-wins
			byDate[key] = pt.Value
		}
	}
	return byDate, nil
}
