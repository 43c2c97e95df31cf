package calendar

import (
	"fmt"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/data/schema"
)

// ProviderObservation is what the normalizer knows about a bar's provider
// timestamp before ts has been derived.
type ProviderObservation struct {
	HasBar       bool // whether the provider returned a bar for this date
	ProviderTs   time.Time
	HasProviderTs bool
}

// DerivedTimestamp is the result of the three-level fallback hierarchy.
type DerivedTimestamp struct {
	Ts           time.Time
	TsProvenance schema.TsProvenance
	Flags        []schema.QualityFlag
}

// DeriveTimestamp implements spec.md section 4.3's fixed hierarchy:
//  1. SessionRules close for mic on tradingDateLocal -> UTC; EXCHANGE_CLOSE.
//  2. Baseline calendar close -> UTC; EXCHANGE_CLOSE (source=baseline).
//  3. Provider timestamp, preserved as UTC; PROVIDER_EOD + PROVIDER_TIMESTAMP_USED.
//
// Calendar conflicts -- a provider bar on a day the calendar considers
// closed, or no bar on a day the calendar considers open -- are flagged
// CALENDAR_CONFLICT; no record is dropped silently by this function (the
// caller decides whether to drop based on the returned flags).
func DeriveTimestamp(mic string, tradingDateLocal time.Time, rules *SessionRulesSnapshot, baseline VenueCalendar, obs ProviderObservation) (DerivedTimestamp, error) {
	var flags []schema.QualityFlag

	isOpen := true
	if baseline != nil {
		open, err := baseline.IsSessionDay(mic, tradingDateLocal)
		if err != nil {
			return DerivedTimestamp{}, fmt.Errorf("calendar: IsSessionDay(%s, %s): %w", mic, tradingDateLocal.Format("2006-01-02"), err)
		}
		isOpen = open
	}
	if isOpen && !obs.HasBar {
		flags = append(flags, schema.FlagCalendarConflict)
	}
	if !isOpen && obs.HasBar {
		flags = append(flags, schema.FlagCalendarConflict)
	}

	if rules != nil {
		if closeLocal, tzName, ok := rules.CloseFor(mic, tradingDateLocal); ok {
			ts, err := combineLocal(tradingDateLocal, closeLocal, tzName)
			if err != nil {
				return DerivedTimestamp{}, fmt.Errorf("calendar: session rule close for %s: %w", mic, err)
			}
			return DerivedTimestamp{Ts: ts, TsProvenance: schema.TsExchangeClose, Flags: flags}, nil
		}
	}

	if baseline != nil {
		closeLocal, ok, err := baseline.SessionCloseLocal(mic, tradingDateLocal)
		if err != nil {
			return DerivedTimestamp{}, fmt.Errorf("calendar: baseline SessionCloseLocal(%s): %w", mic, err)
		}
		if ok {
			return DerivedTimestamp{Ts: closeLocal.UTC(), TsProvenance: schema.TsExchangeClose, Flags: flags}, nil
		}
	}

	if obs.HasProviderTs {
		flags = append(flags, schema.FlagProviderTimestampUsed)
		return DerivedTimestamp{Ts: obs.ProviderTs.UTC(), TsProvenance: schema.TsProviderEOD, Flags: flags}, nil
	}

	return DerivedTimestamp{}, fmt.Errorf("calendar: no session rule, baseline close, or provider timestamp available for %s on %s", mic, tradingDateLocal.Format("2006-01-02"))
}

func combineLocal(date time.Time, hhmmss string, tzName string) (time.Time, error) {
	loc := time.UTC
	if tzName != "" {
		l, err := time.LoadLocation(tzName)
		if err != nil {
			return time.Time{}, fmt.Errorf("load timezone %q: %w", tzName, err)
		}
		loc = l
	}
	clock, err := time.Parse("15:04:05", hhmmss)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse regular_close_local %q: %w", hhmmss, err)
	}
	combined := time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, loc)
	return combined.UTC(), nil
}
