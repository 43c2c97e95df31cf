package access

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// YahooPriceProvider implements PriceProvider against the public Yahoo
// Finance chart API. Adapted from the teacher's internal/clients/yahoo
// client: same chart endpoint, request shape, and header discipline, cut
// down to only the historical OHLCV path FetchDaily needs -- the
// fundamental/analyst-data lookups that client also carried have no
// SPEC_FULL.md consumer.
type YahooPriceProvider struct {
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// NewYahooPriceProvider builds a provider with a 30s request timeout,
// matching the teacher client's default.
func NewYahooPriceProvider(log zerolog.Logger) *YahooPriceProvider {
	return &YahooPriceProvider{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     log.With().Str("provider", "yahoo").Logger(),
	}
}

// yahooChartBaseURL is a var so tests can point FetchDaily at a local
// httptest server instead of the real Yahoo Finance API.
var yahooChartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []float64 `json:"open"`
					High  []float64 `json:"high"`
					Low   []float64 `json:"low"`
					Close []float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// fieldFromQuote picks the requested OHLCV field out of one chart bar.
func fieldFromQuote(field string, open, high, low, close, adjClose float64) (float64, error) {
	switch field {
	case "open":
		return open, nil
	case "high":
		return high, nil
	case "low":
		return low, nil
	case "close":
		return close, nil
	case "adj_close":
		return adjClose, nil
	default:
		return 0, fmt.Errorf("access: yahoo provider does not support field %q", field)
	}
}

// FetchDaily fetches daily bars for providerSymbol over [start, end] and
// returns the requested field as a PricePoint series.
func (p *YahooPriceProvider) FetchDaily(ctx context.Context, providerSymbol, field string, start, end time.Time) ([]PricePoint, error) {
	switch field {
	case "open", "high", "low", "close", "adj_close":
	default:
		return nil, fmt.Errorf("access: yahoo provider does not support field %q", field)
	}

	reqURL := yahooChartBaseURL + url.QueryEscape(providerSymbol)
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("period1", fmt.Sprintf("%d", start.Unix()))
	params.Add("period2", fmt.Sprintf("%d", end.AddDate(0, 0, 1).Unix()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("access: build yahoo request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("access: fetch yahoo chart: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("access: read yahoo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("access: yahoo API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed yahooChartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("access: parse yahoo response: %w", err)
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("access: yahoo API error: %v", parsed.Chart.Error)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, nil
	}

	chart := parsed.Chart.Result[0]
	if len(chart.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := chart.Indicators.Quote[0]
	var adjClose []float64
	if len(chart.Indicators.AdjClose) > 0 {
		adjClose = chart.Indicators.AdjClose[0].AdjClose
	}

	points := make([]PricePoint, 0, len(chart.Timestamp))
	for i, ts := range chart.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			continue
		}
		if quote.Open[i] == 0 && quote.High[i] == 0 && quote.Low[i] == 0 && quote.Close[i] == 0 {
			continue
		}
		ac := quote.Close[i]
		if i < len(adjClose) && adjClose[i] != 0 {
			ac = adjClose[i]
		}
		v, err := fieldFromQuote(field, quote.Open[i], quote.High[i], quote.Low[i], quote.Close[i], ac)
		if err != nil {
			return nil, err
		}
		points = append(points, PricePoint{Date: time.Unix(ts, 0).UTC(), Value: v})
	}

	p.Logger.Debug().Str("symbol", providerSymbol).Str("field", field).Int("bars", len(points)).Msg("access: yahoo bars fetched")
	return points, nil
}
