package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func days(n int) *int { return &n }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestWindowValidateAcceptsLookback(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	w := Window{LookbackTradingDays: days(20)}
	require.NoError(t, w.validate(asOf))
}

func TestWindowValidateAcceptsStartEndOnOrBeforeAsOf(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	w := Window{Start: date(2024, 1, 1), End: date(2024, 3, 1)}
	require.NoError(t, w.validate(asOf))
}

func TestWindowValidateRejectsLookbackCombinedWithStartEnd(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	w := Window{LookbackTradingDays: days(20), Start: date(2024, 1, 1)}
	err := w.validate(asOf)
	require.Error(t, err)
	assert.ErrorContains(t, err, "cannot be used with lookback_trading_days")
}

func TestWindowValidateRejectsNonPositiveLookback(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	w := Window{LookbackTradingDays: days(0)}
	require.Error(t, w.validate(asOf))
}

func TestWindowValidateRejectsMissingEnd(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	w := Window{Start: date(2024, 1, 1)}
	require.Error(t, w.validate(asOf))
}

func TestWindowValidateRejectsStartAfterEnd(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	w := Window{Start: date(2024, 2, 1), End: date(2024, 1, 1)}
	require.Error(t, w.validate(asOf))
}

func TestWindowValidateRejectsLookAhead(t *testing.T) {
	asOf := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	w := Window{Start: date(2024, 1, 1), End: date(2024, 2, 1)}
	err := w.validate(asOf)
	require.Error(t, err)
	assert.ErrorContains(t, err, "cannot be after as_of")
}
