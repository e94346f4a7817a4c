package holiday

import (
	"slices"
	"time"

	"cloudeng.io/datetime"
	cal "github.com/rickar/cal/v2"
)

// Observance is a concrete holiday date within one year.
type Observance struct {
	Name string
	Date time.Time
}

// Oracle decides whether a calendar date is a public holiday under a
// jurisdiction's rule table. It holds no mutable state after construction
// and is safe for concurrent use.
type Oracle struct {
	rules    []Rule
	holidays []*cal.Holiday
	calendar *cal.BusinessCalendar
}

// NewOracle registers every rule on a business calendar. Rule order is kept
// so that the first matching rule names a date.
func NewOracle(rules []Rule) *Oracle {
	o := &Oracle{
		rules:    slices.Clone(rules),
		calendar: cal.NewBusinessCalendar(),
	}
	for _, r := range o.rules {
		h := &cal.Holiday{
			Name: r.Name,
			Type: cal.ObservancePublic,
		}
		switch r.Kind {
		case Movable:
			h.Offset = r.Offset
			h.Func = calcOrthodoxEasterOffset
		default:
			h.Month = r.Month
			h.Day = r.Day
			h.Func = calcFixed
		}
		o.holidays = append(o.holidays, h)
	}
	o.calendar.AddHoliday(o.holidays...)
	return o
}

// IsHoliday reports whether date's calendar day, read in date's own
// location, is a holiday.
func (o *Oracle) IsHoliday(date time.Time) bool {
	actual, _, _ := o.calendar.IsHoliday(date)
	return actual
}

// Lookup returns the name of the holiday falling on date, if any.
func (o *Oracle) Lookup(date time.Time) (string, bool) {
	actual, _, h := o.calendar.IsHoliday(date)
	if !actual || h == nil {
		return "", false
	}
	return h.Name, true
}

// Holidays lists the holidays of year in chronological order.
func (o *Oracle) Holidays(year int) []Observance {
	var out []Observance
	for _, h := range o.holidays {
		actual, _ := h.Calc(year)
		if actual.IsZero() || actual.Year() != year {
			continue
		}
		out = append(out, Observance{Name: h.Name, Date: actual})
	}
	slices.SortStableFunc(out, func(a, b Observance) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// Rules returns a copy of the rule table.
func (o *Oracle) Rules() []Rule {
	return slices.Clone(o.rules)
}

// calcFixed yields no date for Feb 29 outside leap years instead of letting
// time.Date roll it over to Mar 1.
func calcFixed(h *cal.Holiday, year int) time.Time {
	if h.Day < 1 || h.Day > datetime.DaysInMonth(year, datetime.Month(h.Month)) {
		return time.Time{}
	}
	return time.Date(year, h.Month, h.Day, 0, 0, 0, 0, time.UTC)
}

func calcOrthodoxEasterOffset(h *cal.Holiday, year int) time.Time {
	return OrthodoxEaster(year).AddDate(0, 0, h.Offset)
}
