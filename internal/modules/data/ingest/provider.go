// Package ingest implements the provider boundary and ingestion runner
// (C4): raw fetch -> normalize -> validate -> canonical stage -> content
// hash -> publish -> registry append.
package ingest

import (
	"context"
	"fmt"
	"time"
)

// PayloadFormat names the wire format of a RawResponse's payload.
type PayloadFormat string

const (
	PayloadCSV  PayloadFormat = "csv"
	PayloadJSON PayloadFormat = "json"
)

// FetchRequest describes one provider fetch. VendorOverrides carries
// provider-specific knobs (field name remaps, pagination hints) that never
// leak past the normalizer.
type FetchRequest struct {
	DatasetID       string
	InstrumentIDs   []string
	Start           time.Time
	End             time.Time
	Fields          []string
	Granularity     string
	VendorOverrides map[string]string
}

// RawResponse is a ProviderAdapter's unmodified output. Adapters MUST NOT
// mutate payloads, apply FX, or perform calendar logic -- that is the
// normalizer's and calendar package's job.
type RawResponse struct {
	Payload           []byte
	PayloadFormat     PayloadFormat
	ProviderName      string
	Endpoint          string
	FetchedAtTs       time.Time
	RequestFingerprint string
	TransportMeta     map[string]string
}

// ProviderAdapter fetches raw payloads for a FetchRequest.
type ProviderAdapter interface {
	Fetch(ctx context.Context, req FetchRequest) (RawResponse, error)
}

// ProviderFetchError wraps a transport/auth failure at the provider
// boundary.
type ProviderFetchError struct {
	Provider string
	DatasetID string
	Err      error
}

func (e *ProviderFetchError) Error() string {
	return fmt.Sprintf("ingest: provider %s fetch failed for dataset %s: %v", e.Provider, e.DatasetID, e.Err)
}

func (e *ProviderFetchError) Unwrap() error { return e.Err }

// NormalizationError signals a raw payload that does not match the
// provider's declared schema.
type NormalizationError struct {
	Provider string
	Field    string
	Err      error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("ingest: normalization failed for provider %s field %s: %v", e.Provider, e.Field, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// HardValidationError signals a validator hard-rule violation that blocks
// publishing.
type HardValidationError struct {
	Reasons []string
}

func (e *HardValidationError) Error() string {
	return fmt.Sprintf("ingest: %d hard validation error(s): %v", len(e.Reasons), e.Reasons)
}
