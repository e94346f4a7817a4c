package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ivancheban/salary-bot/internal/engine"
	"github.com/ivancheban/salary-bot/internal/holiday"
)

// -----------------------------------------------------------------------------
// Mocks & Fixtures
// -----------------------------------------------------------------------------

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// everyDay marks every date as a holiday.
type everyDay struct{}

func (everyDay) IsHoliday(time.Time) bool { return true }

// holidaySet marks the listed calendar days as holidays.
type holidaySet map[engine.Date]bool

func (h holidaySet) IsHoliday(t time.Time) bool { return h[engine.DateOf(t)] }

func kyiv(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Kyiv")
	require.NoError(t, err)
	return loc
}

func date(s string) engine.Date {
	d, err := engine.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ukraineHolidays() *holiday.Oracle {
	return holiday.NewOracle([]holiday.Rule{
		holiday.FixedRule("New Year", time.January, 1),
		holiday.FixedRule("Christmas (Julian)", time.January, 7),
		holiday.FixedRule("Women's Day", time.March, 8),
		holiday.FixedRule("Labour Day", time.May, 1),
		holiday.FixedRule("Victory Day", time.May, 9),
		holiday.FixedRule("Constitution Day", time.June, 28),
		holiday.FixedRule("Independence Day", time.August, 24),
		holiday.FixedRule("Defenders Day", time.October, 14),
		holiday.FixedRule("Christmas", time.December, 25),
		holiday.MovableRule("Trinity", 49),
	})
}

func ukraineSchedule(loc *time.Location) engine.Schedule {
	return engine.Schedule{
		Location: loc,
		Payments: []engine.Payment{
			{Month: time.February, Day: 5},
			{Month: time.March, Day: 5},
			{Month: time.April, EndOfMonth: true},
			{Month: time.June, Day: 5},
			{Month: time.June, EndOfMonth: true},
			{Month: time.August, Day: 5},
			{Month: time.September, Day: 5},
			{Month: time.September, EndOfMonth: true},
			{Month: time.November, Day: 5},
			{Month: time.December, EndOfMonth: true},
		},
		Reschedules: []engine.Reschedule{
			{From: date("2024-12-31"), To: date("2024-12-30")},
		},
		Overrides: []engine.Override{
			{From: date("2024-12-27"), To: date("2025-01-31"), Target: date("2025-02-05")},
		},
		PayTime: engine.TimeOfDay{Hour: 12, Minute: 10},
	}
}

func newUkraineResolver(t *testing.T) *engine.Resolver {
	t.Helper()
	return engine.NewResolver(ukraineSchedule(kyiv(t)), ukraineHolidays())
}
