package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quantlab-go/internal/modules/data/calendar"
	"github.com/aristath/quantlab-go/internal/modules/data/schema"
	"github.com/aristath/quantlab-go/internal/modules/data/storage"
)

type countingProvider struct {
	inner PriceProvider
	calls int
}

func (p *countingProvider) FetchDaily(ctx context.Context, providerSymbol, field string, start, end time.Time) ([]PricePoint, error) {
	p.calls++
	return p.inner.FetchDaily(ctx, providerSymbol, field, start, end)
}

func newTestService(t *testing.T, provider PriceProvider, cal calendar.VenueCalendar) *Service {
	t.Helper()
	store, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	return &Service{
		Store:          store,
		Mapper:         StaticSymbolMapper{"AAPL": "AAPL.US"},
		Provider:       provider,
		Calendar:       cal,
		ProviderName:   "fixture",
		DatasetVersion: "v1",
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func baseRequest() schema.TimeSeriesRequest {
	return schema.TimeSeriesRequest{
		DatasetID:  "prices",
		Assets:     []string{"AAPL"},
		Fields:     []string{"close"},
		Start:      day(2024, 1, 1),
		End:        day(2024, 1, 5),
		Calendar:   schema.CalendarSpec{MIC: "XNYS"},
		Missing:    schema.MissingDataPolicy{Policy: schema.MissingNanOK},
		Validation: schema.DefaultValidationPolicy(),
		PriceType:  "raw",
	}
}

func TestGetTimeSeriesAlignsToCalendarExcludingHoliday(t *testing.T) {
	fixture := FixturePriceProvider{
		Key("AAPL.US", "close"): {
			{Date: day(2024, 1, 2), Value: 100},
			{Date: day(2024, 1, 3), Value: 101},
			{Date: day(2024, 1, 4), Value: 102},
			{Date: day(2024, 1, 5), Value: 103},
		},
	}
	cal := calendar.NewHolidayCalendar("XNYS", "America/New_York", "16:00:00", []time.Time{day(2024, 1, 1)})
	svc := newTestService(t, fixture, cal)

	bundle, err := svc.GetTimeSeries(context.Background(), baseRequest())
	require.NoError(t, err)

	gotDates := make([]string, len(bundle.Dates))
	for i, d := range bundle.Dates {
		gotDates[i] = d.Format("2006-01-02")
	}
	assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}, gotDates)
	assert.Equal(t, []float64{100, 101, 102, 103}, bundle.Data["AAPL"]["close"])
	assert.Equal(t, "AAPL.US", bundle.AssetsMeta["AAPL"].ProviderSymbol)
}

func TestGetTimeSeriesReplayIsCacheOnlyAndNeverRefetches(t *testing.T) {
	fixture := FixturePriceProvider{
		Key("AAPL.US", "close"): {
			{Date: day(2024, 1, 2), Value: 100},
			{Date: day(2024, 1, 3), Value: 101},
			{Date: day(2024, 1, 4), Value: 102},
			{Date: day(2024, 1, 5), Value: 103},
		},
	}
	counting := &countingProvider{inner: fixture}
	cal := calendar.NewHolidayCalendar("XNYS", "America/New_York", "16:00:00", []time.Time{day(2024, 1, 1)})
	svc := newTestService(t, counting, cal)

	req := baseRequest()
	first, err := svc.GetTimeSeries(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, counting.calls)

	second, err := svc.GetTimeSeries(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, counting.calls, "replay of an identical request must not re-invoke the provider")
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, first.Lineage.RequestHash, second.Lineage.RequestHash)
}

func TestGetTimeSeriesRejectsNonpositivePrice(t *testing.T) {
	fixture := FixturePriceProvider{
		Key("AAPL.US", "close"): {
			{Date: day(2024, 1, 2), Value: 100},
			{Date: day(2024, 1, 3), Value: -1},
			{Date: day(2024, 1, 4), Value: 102},
			{Date: day(2024, 1, 5), Value: 103},
		},
	}
	cal := calendar.NewHolidayCalendar("XNYS", "America/New_York", "16:00:00", []time.Time{day(2024, 1, 1)})
	svc := newTestService(t, fixture, cal)

	_, err := svc.GetTimeSeries(context.Background(), baseRequest())
	assert.Error(t, err)
}

func TestGetTimeSeriesErrorPolicyRejectsMissingObservation(t *testing.T) {
	fixture := FixturePriceProvider{
		Key("AAPL.US", "close"): {
			{Date: day(2024, 1, 2), Value: 100},
			{Date: day(2024, 1, 3), Value: 101},
			{Date: day(2024, 1, 5), Value: 103}, // 2024-01-04 missing
		},
	}
	cal := calendar.NewHolidayCalendar("XNYS", "America/New_York", "16:00:00", []time.Time{day(2024, 1, 1)})
	svc := newTestService(t, fixture, cal)

	req := baseRequest()
	req.Missing.Policy = schema.MissingError
	_, err := svc.GetTimeSeries(context.Background(), req)
	assert.Error(t, err)
}

func TestGetTimeSeriesDropDatesPolicyRemovesGapDates(t *testing.T) {
	fixture := FixturePriceProvider{
		Key("AAPL.US", "close"): {
			{Date: day(2024, 1, 2), Value: 100},
			{Date: day(2024, 1, 3), Value: 101},
			{Date: day(2024, 1, 5), Value: 103}, // 2024-01-04 missing
		},
	}
	cal := calendar.NewHolidayCalendar("XNYS", "America/New_York", "16:00:00", []time.Time{day(2024, 1, 1)})
	svc := newTestService(t, fixture, cal)

	req := baseRequest()
	req.Missing.Policy = schema.MissingDropDates
	bundle, err := svc.GetTimeSeries(context.Background(), req)
	require.NoError(t, err)

	gotDates := make([]string, len(bundle.Dates))
	for i, d := range bundle.Dates {
		gotDates[i] = d.Format("2006-01-02")
	}
	assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-05"}, gotDates)
	assert.Equal(t, []float64{100, 101, 103}, bundle.Data["AAPL"]["close"])
}

func TestGetTimeSeriesRejectsUnmappedAsset(t *testing.T) {
	fixture := FixturePriceProvider{}
	cal := calendar.NewHolidayCalendar("XNYS", "America/New_York", "16:00:00", nil)
	svc := newTestService(t, fixture, cal)

	req := baseRequest()
	req.Assets = []string{"UNMAPPED"}
	_, err := svc.GetTimeSeries(context.Background(), req)
	assert.Error(t, err)
}
