// Package risk implements the risk engine (C9): return builders, sample
// covariance/correlation, drawdown, tracking error, historical VaR/ES, asset
// and currency exposures, and variance attribution, assembled into a
// RiskReport with full lineage per spec.md section 4.9.
package risk

import "fmt"

// InputError is returned for any invalid or insufficient risk-engine input:
// missing values under an ERROR policy, non-finite values, undersized
// samples, or mismatched shapes.
type InputError struct {
	Message string
	Context map[string]any
}

func (e *InputError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("risk: %s", e.Message)
	}
	return fmt.Sprintf("risk: %s (%v)", e.Message, e.Context)
}

func newInputError(message string, context map[string]any) *InputError {
	return &InputError{Message: message, Context: context}
}
