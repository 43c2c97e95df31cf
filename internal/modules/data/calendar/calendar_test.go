package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quantlab-go/internal/modules/data/schema"
)

type fakeBaseline struct {
	open  map[string]bool
	close time.Time
	ok    bool
}

func (f fakeBaseline) IsSessionDay(mic string, date time.Time) (bool, error) {
	return f.open[date.Format("2006-01-02")], nil
}

func (f fakeBaseline) SessionCloseLocal(mic string, date time.Time) (time.Time, bool, error) {
	return f.close, f.ok, nil
}

func (f fakeBaseline) TimezoneLocal(mic string) (*time.Location, error) {
	return time.UTC, nil
}

func (f fakeBaseline) Sessions(mic string, start, end time.Time) ([]time.Time, error) {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if f.open[d.Format("2006-01-02")] {
			out = append(out, d)
		}
	}
	return out, nil
}

func TestNewSessionRulesSnapshotRejectsDuplicateMIC(t *testing.T) {
	rules := []SessionRule{
		{MIC: "XNYS", RegularCloseLocal: "16:00:00", TimezoneLocal: "America/New_York", ValidFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{MIC: "XNYS", RegularCloseLocal: "16:00:00", TimezoneLocal: "America/New_York", ValidFrom: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	_, err := NewSessionRulesSnapshot("v1", rules)
	assert.Error(t, err)
}

func TestSessionRulesHashStableUnderInputOrder(t *testing.T) {
	a := []SessionRule{
		{MIC: "XNYS", RegularCloseLocal: "16:00:00", TimezoneLocal: "America/New_York", ValidFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{MIC: "XLON", RegularCloseLocal: "16:30:00", TimezoneLocal: "Europe/London", ValidFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	b := []SessionRule{a[1], a[0]}

	snapA, err := NewSessionRulesSnapshot("v1", a)
	require.NoError(t, err)
	snapB, err := NewSessionRulesSnapshot("v1", b)
	require.NoError(t, err)

	assert.Equal(t, snapA.SessionRulesHash, snapB.SessionRulesHash)
}

func TestDeriveTimestampPrefersSessionRules(t *testing.T) {
	rules, err := NewSessionRulesSnapshot("v1", []SessionRule{
		{MIC: "XNYS", RegularCloseLocal: "16:00:00", TimezoneLocal: "America/New_York", ValidFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)

	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	baseline := fakeBaseline{open: map[string]bool{"2024-01-02": true}}

	derived, err := DeriveTimestamp("XNYS", date, rules, baseline, ProviderObservation{HasBar: true})
	require.NoError(t, err)
	assert.Equal(t, schema.TsExchangeClose, derived.TsProvenance)
	assert.Empty(t, derived.Flags)
	assert.Equal(t, 21, derived.Ts.Hour()) // 16:00 EST -> 21:00 UTC
}

func TestDeriveTimestampFallsBackToProviderTimestamp(t *testing.T) {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	baseline := fakeBaseline{open: map[string]bool{"2024-01-02": true}, ok: false}
	providerTs := time.Date(2024, 1, 2, 21, 5, 0, 0, time.UTC)

	derived, err := DeriveTimestamp("XNYS", date, nil, baseline, ProviderObservation{HasBar: true, HasProviderTs: true, ProviderTs: providerTs})
	require.NoError(t, err)
	assert.Equal(t, schema.TsProviderEOD, derived.TsProvenance)
	assert.Contains(t, derived.Flags, schema.FlagProviderTimestampUsed)
}

func TestDeriveTimestampFlagsCalendarConflictOnClosedDayBar(t *testing.T) {
	rules, err := NewSessionRulesSnapshot("v1", []SessionRule{
		{MIC: "XNYS", RegularCloseLocal: "16:00:00", TimezoneLocal: "America/New_York", ValidFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // holiday, closed
	baseline := fakeBaseline{open: map[string]bool{"2024-01-01": false}}

	derived, err := DeriveTimestamp("XNYS", date, rules, baseline, ProviderObservation{HasBar: true})
	require.NoError(t, err)
	assert.Contains(t, derived.Flags, schema.FlagCalendarConflict)
}

func TestRefreshCadenceValidateRejectsBadExpression(t *testing.T) {
	c := RefreshCadence{MIC: "XNYS", Expression: "not a cron"}
	assert.Error(t, c.Validate())
}

func TestRefreshCadenceValidateAcceptsStandardExpression(t *testing.T) {
	c := RefreshCadence{MIC: "XNYS", Expression: "0 21 * * 1-5"}
	assert.NoError(t, c.Validate())
}

func TestCalendarBaselineSpecVersionID(t *testing.T) {
	s := CalendarBaselineSpec{Name: "XNYS_BASELINE", Version: "2026.1"}
	assert.Equal(t, "XNYS_BASELINE:2026.1", s.VersionID())

	s.OverridesHash = "abc123"
	assert.Equal(t, "XNYS_BASELINE:2026.1+abc123", s.VersionID())
}
