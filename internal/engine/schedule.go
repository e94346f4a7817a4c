package engine

import (
	"slices"
	"time"

	"cloudeng.io/datetime"

	"github.com/ivancheban/salary-bot/internal/config"
)

// Payment is a target payment date repeated every year. A quarter-closing
// month may appear twice: once with a day of month, once with EndOfMonth.
type Payment struct {
	Month      time.Month
	Day        int
	EndOfMonth bool
}

// On returns the payment's target date in year. A day past the end of a
// short month (Feb 29 in a common year) is clamped to the month's last day.
func (p Payment) On(year int) Date {
	last := datetime.DaysInMonth(year, datetime.Month(p.Month))
	if p.EndOfMonth || p.Day > last {
		return Date{Year: year, Month: p.Month, Day: last}
	}
	return NewDate(year, p.Month, p.Day)
}

// Reschedule replaces one generated candidate with another date, for years
// where the regular rule does not apply to a single payment.
type Reschedule struct {
	From Date
	To   Date
}

// Override maps every "now" whose calendar day lies in [From, To] to an
// explicit Target, bypassing the regular rule.
type Override struct {
	From   Date
	To     Date
	Target Date
}

// Covers reports whether d lies inside the override window.
func (o Override) Covers(d Date) bool {
	return !d.Before(o.From) && !d.After(o.To)
}

// Schedule is a jurisdiction's payment schedule.
type Schedule struct {
	Location       *time.Location
	Payments       []Payment
	Reschedules    []Reschedule
	Overrides      []Override
	PayTime        TimeOfDay
	Weekend        []time.Weekday
	MaxAdjustments int
	LookaheadYears int
}

// withDefaults fills unset fields.
func (s Schedule) withDefaults() Schedule {
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.PayTime == (TimeOfDay{}) {
		s.PayTime = TimeOfDay{Hour: config.DefaultPayHour, Minute: config.DefaultPayMinute}
	}
	if s.Weekend == nil {
		s.Weekend = []time.Weekday{time.Saturday, time.Sunday}
	}
	if s.MaxAdjustments <= 0 {
		s.MaxAdjustments = config.DefaultMaxAdjustments
	}
	if s.LookaheadYears <= 0 {
		s.LookaheadYears = config.DefaultLookaheadYears
	}
	s.Payments = slices.Clone(s.Payments)
	s.Reschedules = slices.Clone(s.Reschedules)
	s.Overrides = slices.Clone(s.Overrides)
	s.Weekend = slices.Clone(s.Weekend)
	return s
}

// Candidates returns the unadjusted target dates of year and the
// lookahead years after it, deduplicated and sorted.
func (s Schedule) Candidates(year int) []Date {
	moved := make(map[Date]Date, len(s.Reschedules))
	for _, r := range s.Reschedules {
		moved[r.From] = r.To
	}

	seen := make(map[Date]struct{})
	var out []Date
	for y := year; y <= year+s.LookaheadYears; y++ {
		for _, p := range s.Payments {
			d := p.On(y)
			if to, ok := moved[d]; ok {
				d = to
			}
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	slices.SortFunc(out, Date.Compare)
	return out
}

func (s Schedule) isWeekend(wd time.Weekday) bool {
	return slices.Contains(s.Weekend, wd)
}
