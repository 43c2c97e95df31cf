// Package access implements the access service (C6): the single entry
// point applications use to request a clean, aligned, validated time
// series. It resolves asset ids to provider symbols, fetches raw
// observations, aligns them to a venue calendar, applies a missing-data
// policy, runs validation guardrails, and persists the result alongside a
// manifest keyed by request_hash -- spec.md section 4.6's seven-step
// pipeline.
package access

import (
	"fmt"
)

// SymbolMappingError reports an asset id with no configured provider symbol.
type SymbolMappingError struct {
	AssetID string
}

func (e *SymbolMappingError) Error() string {
	return fmt.Sprintf("access: no symbol mapping for asset %q", e.AssetID)
}

// InputError reports a malformed request (spec.md section 4.6's "reject
// malformed request" step).
type InputError struct {
	Message string
	Context map[string]any
}

func newInputError(message string, context map[string]any) *InputError {
	return &InputError{Message: message, Context: context}
}

func (e *InputError) Error() string {
	if len(e.Context) == 0 {
		return "access: " + e.Message
	}
	return fmt.Sprintf("access: %s %v", e.Message, e.Context)
}

// ValidationError reports a guardrail violation under a policy that does
// not tolerate it (e.g. ERROR missing-data policy, ERROR duplicate
// discipline, a non-positive price).
type ValidationError struct {
	Message string
	Context map[string]any
}

func newValidationError(message string, context map[string]any) *ValidationError {
	return &ValidationError{Message: message, Context: context}
}

func (e *ValidationError) Error() string {
	if len(e.Context) == 0 {
		return "access: " + e.Message
	}
	return fmt.Sprintf("access: %s %v", e.Message, e.Context)
}
