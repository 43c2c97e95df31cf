package ingest

import (
	"fmt"
	"math"

	"github.com/aristath/quantlab-go/internal/modules/data/schema"
)

// ValidationReport partitions a batch's findings into hard errors (block
// publishing) and per-record soft flags.
type ValidationReport struct {
	HardErrors []string
	FlagCounts map[schema.QualityFlag]int
}

// HasHardErrors reports whether publishing must be blocked.
func (r ValidationReport) HasHardErrors() bool { return len(r.HardErrors) > 0 }

// Validator partitions normalized records' findings into hard errors and
// soft flags. It never mutates a record's values.
type Validator struct {
	MonotonicIndexRequired bool
}

// Validate checks a batch of BarRecords for one instrument, assumed to be
// in trading_date_local order. Non-positive prices and OHLC inconsistency
// are already rejected at construction (schema.NewBarRecord); this pass
// adds the cross-record checks: monotonic/unique index and duplicate
// detection.
func (v *Validator) Validate(records []schema.BarRecord) ValidationReport {
	report := ValidationReport{FlagCounts: make(map[schema.QualityFlag]int)}

	seenDates := make(map[string]int)
	lastDate := ""
	for i, rec := range records {
		for _, f := range rec.Meta.QualityFlags {
			report.FlagCounts[f]++
		}

		date := rec.Meta.TradingDateLocal
		if idx, dup := seenDates[date]; dup {
			report.FlagCounts[schema.FlagDuplicateResolved]++
			_ = idx
			continue
		}
		seenDates[date] = i

		if v.MonotonicIndexRequired && lastDate != "" && date <= lastDate {
			report.HardErrors = append(report.HardErrors, fmt.Sprintf("record %d: trading_date_local %s is not strictly after %s", i, date, lastDate))
			report.FlagCounts[schema.FlagNonmonotonicIndex]++
		}
		lastDate = date
	}

	return report
}

// FlagSuspectCorpActions scans a monotonic close-price series for jumps
// exceeding corpActionJumpThreshold (default 0.40), returning the indices
// flagged. Values are never altered -- only flagged.
func FlagSuspectCorpActions(closes []float64, corpActionJumpThreshold float64) []int {
	if corpActionJumpThreshold <= 0 {
		corpActionJumpThreshold = 0.40
	}
	var flagged []int
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(cur) {
			continue
		}
		r := cur/prev - 1
		if math.Abs(r) >= corpActionJumpThreshold {
			flagged = append(flagged, i)
		}
	}
	return flagged
}
