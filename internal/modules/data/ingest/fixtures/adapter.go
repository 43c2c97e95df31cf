// Package fixtures implements the MVP local CSV/JSON fixture provider
// adapter (spec.md section 6: "MVP adapter reads local CSV/JSON fixtures").
package fixtures

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/data/identity"
	"github.com/aristath/quantlab-go/internal/modules/data/ingest"
)

// Adapter reads one fixture file per dataset from a local directory. It
// never mutates the bytes it reads, applies FX, or performs calendar logic
// -- it only resolves a FetchRequest to a file and returns its bytes.
type Adapter struct {
	Root         string
	ProviderName string
}

// Fetch implements ingest.ProviderAdapter.
func (a *Adapter) Fetch(_ context.Context, req ingest.FetchRequest) (ingest.RawResponse, error) {
	path, format, err := a.resolve(req)
	if err != nil {
		return ingest.RawResponse{}, err
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return ingest.RawResponse{}, fmt.Errorf("fixtures: read %s: %w", path, err)
	}

	fetchedAt := time.Now().UTC()
	fingerprint, err := requestFingerprint(req)
	if err != nil {
		return ingest.RawResponse{}, fmt.Errorf("fixtures: fingerprint request: %w", err)
	}

	return ingest.RawResponse{
		Payload:            payload,
		PayloadFormat:      format,
		ProviderName:       a.ProviderName,
		Endpoint:           path,
		FetchedAtTs:        fetchedAt,
		RequestFingerprint: fingerprint,
	}, nil
}

func (a *Adapter) resolve(req ingest.FetchRequest) (string, ingest.PayloadFormat, error) {
	csvPath := filepath.Join(a.Root, req.DatasetID+".csv")
	if _, err := os.Stat(csvPath); err == nil {
		return csvPath, ingest.PayloadCSV, nil
	}
	jsonPath := filepath.Join(a.Root, req.DatasetID+".json")
	if _, err := os.Stat(jsonPath); err == nil {
		return jsonPath, ingest.PayloadJSON, nil
	}
	return "", "", fmt.Errorf("fixtures: no fixture file found for dataset %q under %s", req.DatasetID, a.Root)
}

type fingerprintRequest struct {
	datasetID     string
	instrumentIDs []string
	fields        []string
	start, end    time.Time
}

func (r fingerprintRequest) CanonicalPayload() map[string]any {
	instruments := make([]any, len(r.instrumentIDs))
	for i, id := range identity.SortUnique(r.instrumentIDs) {
		instruments[i] = id
	}
	fields := make([]any, len(r.fields))
	for i, f := range identity.SortUnique(r.fields) {
		fields[i] = f
	}
	return map[string]any{
		"dataset_id":     r.datasetID,
		"instrument_ids": instruments,
		"fields":         fields,
		"start":          identity.FormatDate(r.start),
		"end":            identity.FormatDate(r.end),
	}
}

func requestFingerprint(req ingest.FetchRequest) (string, error) {
	fr := fingerprintRequest{
		datasetID:     req.DatasetID,
		instrumentIDs: req.InstrumentIDs,
		fields:        req.Fields,
		start:         req.Start,
		end:           req.End,
	}
	return identity.ContentHashOf(fr)
}
