// Package httpadapter implements an HTTP-based ProviderAdapter client
// conforming to the C4 contract, plus a chi/cors fixture server used by
// integration tests to stand in for a real provider over HTTP.
package httpadapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/data/identity"
	"github.com/aristath/quantlab-go/internal/modules/data/ingest"
)

// Adapter fetches a dataset's fixture payload over HTTP from BaseURL.
type Adapter struct {
	BaseURL      string
	ProviderName string
	Client       *http.Client
}

// NewAdapter returns an Adapter with a sane default HTTP client timeout.
func NewAdapter(baseURL, providerName string) *Adapter {
	return &Adapter{
		BaseURL:      baseURL,
		ProviderName: providerName,
		Client:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch implements ingest.ProviderAdapter.
func (a *Adapter) Fetch(ctx context.Context, req ingest.FetchRequest) (ingest.RawResponse, error) {
	endpoint := fmt.Sprintf("%s/datasets/%s", strings.TrimRight(a.BaseURL, "/"), url.PathEscape(req.DatasetID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ingest.RawResponse{}, fmt.Errorf("httpadapter: build request: %w", err)
	}

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return ingest.RawResponse{}, fmt.Errorf("httpadapter: request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ingest.RawResponse{}, fmt.Errorf("httpadapter: read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return ingest.RawResponse{}, fmt.Errorf("httpadapter: %s returned status %d: %s", endpoint, resp.StatusCode, string(body))
	}

	fetchedAt := time.Now().UTC()
	fingerprint, err := fingerprint(req)
	if err != nil {
		return ingest.RawResponse{}, fmt.Errorf("httpadapter: fingerprint request: %w", err)
	}

	format := ingest.PayloadJSON
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "csv") {
		format = ingest.PayloadCSV
	}

	return ingest.RawResponse{
		Payload:            body,
		PayloadFormat:      format,
		ProviderName:       a.ProviderName,
		Endpoint:           endpoint,
		FetchedAtTs:        fetchedAt,
		RequestFingerprint: fingerprint,
		TransportMeta:      map[string]string{"status": resp.Status},
	}, nil
}

type fingerprintRequest struct {
	datasetID     string
	instrumentIDs []string
	start, end    time.Time
}

func (r fingerprintRequest) CanonicalPayload() map[string]any {
	instruments := make([]any, len(r.instrumentIDs))
	for i, id := range identity.SortUnique(r.instrumentIDs) {
		instruments[i] = id
	}
	return map[string]any{
		"dataset_id":     r.datasetID,
		"instrument_ids": instruments,
		"start":          identity.FormatDate(r.start),
		"end":            identity.FormatDate(r.end),
	}
}

func fingerprint(req ingest.FetchRequest) (string, error) {
	return identity.ContentHashOf(fingerprintRequest{
		datasetID:     req.DatasetID,
		instrumentIDs: req.InstrumentIDs,
		start:         req.Start,
		end:           req.End,
	})
}
