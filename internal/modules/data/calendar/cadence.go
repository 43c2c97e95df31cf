package calendar

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// RefreshCadence is the cron expression a provider is expected to publish
// EOD bars on for a given venue. QuantLab never schedules against it --
// that belongs to an external orchestrator (spec.md section 1) -- it only
// validates the expression is well-formed so a bad seed-universe entry
// fails at load time rather than silently never firing downstream.
type RefreshCadence struct {
	MIC        string
	Expression string
}

var cadenceParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate parses the cadence's cron expression, returning an error naming
// the offending MIC if the expression is malformed.
func (c RefreshCadence) Validate() error {
	if _, err := cadenceParser.Parse(c.Expression); err != nil {
		return fmt.Errorf("calendar: refresh cadence for %s: invalid cron expression %q: %w", c.MIC, c.Expression, err)
	}
	return nil
}

// ValidateRefreshCadences validates every cadence and returns the first
// error found (nil if all are valid).
func ValidateRefreshCadences(cadences []RefreshCadence) error {
	var firstErr error
	for _, c := range cadences {
		if err := c.Validate(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
