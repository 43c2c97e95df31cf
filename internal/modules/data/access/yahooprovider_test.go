package access

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYahooChart = `{
	"chart": {
		"result": [{
			"timestamp": [1704153600, 1704240000],
			"indicators": {
				"quote": [{
					"open": [100.0, 101.0],
					"high": [102.0, 103.0],
					"low": [99.0, 100.0],
					"close": [101.5, 102.5]
				}],
				"adjclose": [{"adjclose": [101.4, 102.4]}]
			}
		}],
		"error": null
	}
}`

func TestYahooPriceProviderFetchDailyParsesChartResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleYahooChart))
	}))
	defer srv.Close()

	p := NewYahooPriceProvider(zeroLogger())
	p.HTTPClient = srv.Client()

	orig := yahooChartBaseURL
	yahooChartBaseURL = srv.URL + "/"
	defer func() { yahooChartBaseURL = orig }()

	points, err := p.FetchDaily(context.Background(), "AAPL", "close",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 101.5, points[0].Value)
	assert.Equal(t, 102.5, points[1].Value)
}

func TestYahooPriceProviderFetchDailyRejectsUnsupportedField(t *testing.T) {
	p := NewYahooPriceProvider(zeroLogger())
	_, err := p.FetchDaily(context.Background(), "AAPL", "volume", time.Now(), time.Now())
	assert.Error(t, err)
}
