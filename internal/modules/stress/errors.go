// Package stress implements the stress engine (C10): scenario models,
// shock application, linear revaluation, and portfolio-level aggregation
// and summary metrics. Like the risk engine, it performs no I/O -- callers
// supply prices and positions already resolved.
package stress

import "fmt"

// InputError is raised when stress inputs fail validation -- a malformed
// scenario, a missing price, or a shock that produces a negative price for
// a price-positive instrument.
type InputError struct {
	Message string
	Context map[string]any
}

func newInputError(message string, context map[string]any) *InputError {
	return &InputError{Message: message, Context: context}
}

func (e *InputError) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Context)
}

// ScenarioError is raised when a scenario or scenario-set definition is
// invalid (empty shock vector, duplicate scenario_id, mismatched
// conventions).
type ScenarioError struct {
	Message string
	Context map[string]any
}

func newScenarioError(message string, context map[string]any) *ScenarioError {
	return &ScenarioError{Message: message, Context: context}
}

func (e *ScenarioError) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Context)
}
