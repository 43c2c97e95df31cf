package access

import (
	"math"
	"time"
)

// checkMonotonicUnique enforces spec.md section 4.6's guardrail that the
// final target index be strictly increasing with no repeats. The calendar
// index is built this way by construction; this is a defensive check
// against a misbehaving VenueCalendar implementation.
func checkMonotonicUnique(dates []time.Time) error {
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return newValidationError("target calendar index is not strictly increasing", map[string]any{
				"index": i,
				"prev":  dates[i-1].Format("2006-01-02"),
				"curr":  dates[i].Format("2006-01-02"),
			})
		}
	}
	return nil
}

// dropMissingDates removes every date index where any asset/field value is
// NaN, applying the DROP_DATES missing-data policy across the whole
// bundle rather than per asset.
func dropMissingDates(dates []time.Time, data map[string]map[string][]float64) ([]time.Time, map[string]map[string][]float64) {
	keep := make([]bool, len(dates))
	for i := range dates {
		keep[i] = true
	}
	for _, fields := range data {
		for _, series := range fields {
			for i, v := range series {
				if math.IsNaN(v) {
					keep[i] = false
				}
			}
		}
	}

	newDates := make([]time.Time, 0, len(dates))
	for i, d := range dates {
		if keep[i] {
			newDates = append(newDates, d)
		}
	}

	newData := make(map[string]map[string][]float64, len(data))
	for assetID, fields := range data {
		newFields := make(map[string][]float64, len(fields))
		for field, series := range fields {
			newSeries := make([]float64, 0, len(newDates))
			for i, v := range series {
				if keep[i] {
					newSeries = append(newSeries, v)
				}
			}
			newFields[field] = newSeries
		}
		newData[assetID] = newFields
	}
	return newDates, newData
}

func countMissing(series []float64) int {
	n := 0
	for _, v := range series {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
