package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/quantlab-go/internal/modules/data/schema"
)

func TestFlagSuspectCorpActionsDetectsNaiveSplit(t *testing.T) {
	closes := []float64{100, 100, 50, 51, 52}
	flagged := FlagSuspectCorpActions(closes, 0.40)
	assert.Equal(t, []int{2}, flagged)
}

func TestValidatorFlagsNonmonotonicIndexAsHardError(t *testing.T) {
	records := []schema.BarRecord{
		{Meta: schema.RecordMeta{TradingDateLocal: "2024-01-03"}},
		{Meta: schema.RecordMeta{TradingDateLocal: "2024-01-02"}},
	}
	v := &Validator{MonotonicIndexRequired: true}
	report := v.Validate(records)
	assert.True(t, report.HasHardErrors())
}

func TestValidatorCountsDuplicateDates(t *testing.T) {
	records := []schema.BarRecord{
		{Meta: schema.RecordMeta{TradingDateLocal: "2024-01-02"}},
		{Meta: schema.RecordMeta{TradingDateLocal: "2024-01-02"}},
	}
	v := &Validator{}
	report := v.Validate(records)
	assert.Equal(t, 1, report.FlagCounts[schema.FlagDuplicateResolved])
	assert.False(t, report.HasHardErrors())
}
