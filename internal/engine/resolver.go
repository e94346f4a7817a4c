package engine

import (
	"fmt"
	"time"

	"github.com/ivancheban/salary-bot/internal/config"
)

// HolidayOracle decides whether a calendar date is a public holiday.
type HolidayOracle interface {
	IsHoliday(date time.Time) bool
}

// Resolver computes the next salary date for a schedule. It keeps no state
// between calls and is safe for concurrent use.
type Resolver struct {
	schedule Schedule
	holidays HolidayOracle
}

// NewResolver copies the schedule, filling unset fields with defaults.
// A nil oracle means no holidays.
func NewResolver(s Schedule, holidays HolidayOracle) *Resolver {
	return &Resolver{
		schedule: s.withDefaults(),
		holidays: holidays,
	}
}

// Location returns the zone all resolutions are computed in.
func (r *Resolver) Location() *time.Location {
	return r.schedule.Location
}

// Schedule returns the effective schedule.
func (r *Resolver) Schedule() Schedule {
	return r.schedule.withDefaults()
}

// Next returns the next salary date relative to now.
//
// The result is never before now: a target on now's day is kept only while
// the disbursement time has not been reached, and a target whose adjusted
// date has already passed is skipped. Failures are ErrUnresolvable or an
// *AdjustmentError.
func (r *Resolver) Next(now time.Time) (SalaryDate, error) {
	now = now.In(r.schedule.Location)
	today := DateOf(now)

	for _, o := range r.schedule.Overrides {
		if !o.Covers(today) {
			continue
		}
		sd, err := r.settle(o.Target)
		if err != nil {
			return SalaryDate{}, err
		}
		if sd.At.After(now) {
			sd.Override = true
			return sd, nil
		}
	}

	for _, c := range r.schedule.Candidates(today.Year) {
		if c.Before(today) {
			continue
		}
		sd, err := r.settle(c)
		if err != nil {
			return SalaryDate{}, err
		}
		if !sd.At.After(now) {
			continue
		}
		return sd, nil
	}

	return SalaryDate{}, ErrUnresolvable
}

// Year lists every salary date falling in year, in order. Each step of the
// walk yields a later date produced by a payment, reschedule or override,
// so the walk is bounded by their count.
func (r *Resolver) Year(year int) ([]SalaryDate, error) {
	now := time.Date(year-1, time.December, 31, 0, 0, 0, 0, r.schedule.Location)
	limit := len(r.schedule.Payments) + len(r.schedule.Reschedules) + len(r.schedule.Overrides) + 2

	var out []SalaryDate
	for range limit {
		sd, err := r.Next(now)
		if err != nil {
			return nil, err
		}
		if sd.At.Year() > year {
			return out, nil
		}
		if sd.At.Year() == year {
			out = append(out, sd)
		}
		now = sd.At
	}
	return nil, fmt.Errorf("%s %d: %w", config.ErrYearWalk, year, ErrUnresolvable)
}

// IsWorkday reports whether d is neither a weekend day nor a holiday.
func (r *Resolver) IsWorkday(d Date) bool {
	t := d.In(r.schedule.Location)
	if r.schedule.isWeekend(t.Weekday()) {
		return false
	}
	return r.holidays == nil || !r.holidays.IsHoliday(t)
}

// settle moves target back onto a working day and attaches the
// disbursement time. At most MaxAdjustments days, the target included, are
// examined. The time is attached only after the date is final.
func (r *Resolver) settle(target Date) (SalaryDate, error) {
	loc := r.schedule.Location
	day := target
	for shift := 0; shift < r.schedule.MaxAdjustments; shift++ {
		if r.IsWorkday(day) {
			return SalaryDate{
				At:     r.schedule.PayTime.On(day, loc),
				Target: target.In(loc),
				Shift:  shift,
			}, nil
		}
		day = day.AddDays(-1)
	}
	return SalaryDate{}, &AdjustmentError{Target: target.In(loc), Steps: r.schedule.MaxAdjustments}
}
