package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolidayCalendarSessionsExcludesNewYearsDay(t *testing.T) {
	cal := NewHolidayCalendar("XNYS", "America/New_York", "16:00:00", []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	sessions, err := cal.Sessions("XNYS",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	want := []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}
	got := make([]string, len(sessions))
	for i, d := range sessions {
		got[i] = d.Format("2006-01-02")
	}
	assert.Equal(t, want, got)
}

func TestHolidayCalendarIsSessionDayRejectsWeekend(t *testing.T) {
	cal := NewHolidayCalendar("XNYS", "America/New_York", "16:00:00", nil)
	open, err := cal.IsSessionDay("XNYS", time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)) // Saturday
	require.NoError(t, err)
	assert.False(t, open)
}

func TestHolidayCalendarSessionsRejectsEndBeforeStart(t *testing.T) {
	cal := NewHolidayCalendar("XNYS", "America/New_York", "16:00:00", nil)
	_, err := cal.Sessions("XNYS",
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}
