// Package policy loads a jurisdiction's payroll calendar: its zone, weekend,
// holiday table and payment schedule.
package policy

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"cloudeng.io/datetime"
	"cloudeng.io/errors"
	"gopkg.in/yaml.v3"

	"github.com/ivancheban/salary-bot/internal/config"
	"github.com/ivancheban/salary-bot/internal/engine"
	"github.com/ivancheban/salary-bot/internal/holiday"
)

//go:embed ukraine.yaml
var defaultPolicy []byte

// Policy is a validated jurisdiction policy.
type Policy struct {
	Name     string
	Location *time.Location
	Holidays *holiday.Oracle
	Schedule engine.Schedule
}

// Resolver returns a resolver bound to the policy's schedule and holidays.
func (p *Policy) Resolver() *engine.Resolver {
	return engine.NewResolver(p.Schedule, p.Holidays)
}

// Default returns the built-in Ukrainian policy.
func Default() (*Policy, error) {
	return Parse(defaultPolicy)
}

// Load reads a policy from a local path or an http(s) URL. An empty source
// selects the built-in policy.
func Load(ctx context.Context, source string, fetcher Fetcher) (*Policy, error) {
	var (
		p   *Policy
		err error
	)
	switch {
	case source == "":
		p, err = Default()
	case strings.HasPrefix(source, config.SchemeHTTP+"://"), strings.HasPrefix(source, config.SchemeHTTPS+"://"):
		p, err = loadRemote(ctx, source, fetcher)
	default:
		var data []byte
		data, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrPolicyRead, err)
		}
		p, err = Parse(data)
	}
	if err != nil {
		return nil, err
	}

	slog.Info(config.MsgPolicyLoaded,
		config.LogKeyComponent, config.CompPolicy,
		config.LogKeySource, source,
		config.LogKeyName, p.Name,
		config.LogKeyZone, p.Location.String(),
		config.LogKeyHolidays, len(p.Holidays.Rules()),
		config.LogKeyPayments, len(p.Schedule.Payments),
		config.LogKeyOverrides, len(p.Schedule.Overrides),
	)
	return p, nil
}

func loadRemote(ctx context.Context, source string, fetcher Fetcher) (*Policy, error) {
	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}
	rc, err := fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPolicyRead, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML policy. Unknown keys are rejected.
// Every validation problem is reported, not just the first.
func Parse(data []byte) (*Policy, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPolicyParse, err)
	}
	return f.Compile()
}

// Compile validates f and builds the holiday oracle and schedule.
func (f *File) Compile() (*Policy, error) {
	errs := &errors.M{}

	if strings.TrimSpace(f.Name) == "" {
		errs.Append(errors.New(config.ErrPolicyName))
	}

	zone := f.Zone
	if zone == "" {
		zone = config.DefaultTimeZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		errs.Append(fmt.Errorf("%s %q: %w", config.ErrPolicyZone, zone, err))
	}

	s := engine.Schedule{
		Location:       loc,
		MaxAdjustments: f.MaxAdjustments,
		LookaheadYears: f.LookaheadYears,
	}
	if f.MaxAdjustments < 0 || f.LookaheadYears < 0 {
		errs.Append(errors.New(config.ErrPolicyBound))
	}

	if f.PayTime != "" {
		tod, err := engine.ParseTimeOfDay(f.PayTime)
		if err != nil {
			errs.Append(fmt.Errorf("%s %q: %w", config.ErrPolicyTime, f.PayTime, err))
		}
		s.PayTime = tod
	}

	for _, name := range f.Weekend {
		wd, ok := parseWeekday(name)
		if !ok {
			errs.Append(fmt.Errorf("%s: %q", config.ErrPolicyWeekday, name))
			continue
		}
		s.Weekend = append(s.Weekend, wd)
	}

	rules := make([]holiday.Rule, 0, len(f.Holidays))
	for _, h := range f.Holidays {
		r, err := h.rule()
		if err != nil {
			errs.Append(err)
			continue
		}
		rules = append(rules, r)
	}

	if len(f.Payments) == 0 {
		errs.Append(errors.New(config.ErrPolicyNoPayments))
	}
	for _, p := range f.Payments {
		pay, err := p.payment()
		if err != nil {
			errs.Append(err)
			continue
		}
		s.Payments = append(s.Payments, pay)
	}

	for _, r := range f.Reschedules {
		from, errFrom := parseDate(r.From)
		to, errTo := parseDate(r.To)
		if errFrom != nil || errTo != nil {
			errs.Append(errFrom, errTo)
			continue
		}
		s.Reschedules = append(s.Reschedules, engine.Reschedule{From: from, To: to})
	}

	for _, o := range f.Overrides {
		from, errFrom := parseDate(o.From)
		to, errTo := parseDate(o.To)
		target, errTarget := parseDate(o.Target)
		if errFrom != nil || errTo != nil || errTarget != nil {
			errs.Append(errFrom, errTo, errTarget)
			continue
		}
		if to.Before(from) {
			errs.Append(fmt.Errorf("%s: %s..%s", config.ErrPolicyWindow, from, to))
			continue
		}
		s.Overrides = append(s.Overrides, engine.Override{From: from, To: to, Target: target})
	}

	if err := errs.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPolicyInvalid, err)
	}

	return &Policy{
		Name:     f.Name,
		Location: loc,
		Holidays: holiday.NewOracle(rules),
		Schedule: s,
	}, nil
}

func (h HolidayEntry) rule() (holiday.Rule, error) {
	switch {
	case h.Name == "":
		return holiday.Rule{}, fmt.Errorf("%s: missing name", config.ErrPolicyHoliday)
	case h.EasterOffset != nil && h.Date != "":
		return holiday.Rule{}, fmt.Errorf("%s %q: both date and easter_offset set", config.ErrPolicyHoliday, h.Name)
	case h.EasterOffset != nil:
		off := *h.EasterOffset
		if off < config.MinEasterOffset || off > config.MaxEasterOffset {
			return holiday.Rule{}, fmt.Errorf("%s %q: %d", config.ErrPolicyOffset, h.Name, off)
		}
		return holiday.MovableRule(h.Name, off), nil
	default:
		name, _, _ := strings.Cut(h.Date, "-")
		if _, err := parseMonth(name); err != nil {
			return holiday.Rule{}, fmt.Errorf("%s %q: %w", config.ErrPolicyHoliday, h.Name, err)
		}
		// A leap year lets Feb-29 through; the oracle skips it in common years.
		d, err := datetime.ParseDate(config.DefaultLeapYear, h.Date)
		if err != nil {
			return holiday.Rule{}, fmt.Errorf("%s %q: %w", config.ErrPolicyHoliday, h.Name, err)
		}
		return holiday.FixedRule(h.Name, time.Month(d.Month), d.Day), nil
	}
}

func (p PaymentEntry) payment() (engine.Payment, error) {
	m, err := parseMonth(p.Month)
	if err != nil {
		return engine.Payment{}, fmt.Errorf("%s: %w", config.ErrPolicyMonth, err)
	}
	month := time.Month(m)

	if strings.EqualFold(p.Day, config.PaymentDayLast) {
		return engine.Payment{Month: month, EndOfMonth: true}, nil
	}
	day, err := strconv.Atoi(p.Day)
	if err != nil || day < 1 || day > datetime.DaysInMonth(config.DefaultLeapYear, m) {
		return engine.Payment{}, fmt.Errorf("%s: %s %q", config.ErrPolicyDay, month, p.Day)
	}
	return engine.Payment{Month: month, Day: day}, nil
}

// parseMonth accepts a month name of at least three letters. Shorter
// prefixes such as "Ma" or "Ju" would silently pick the first match.
func parseMonth(name string) (datetime.Month, error) {
	name = strings.TrimSpace(name)
	if len(name) < config.MinMonthNameLen {
		return 0, fmt.Errorf("%s: %q", config.ErrMonthAmbiguous, name)
	}
	return datetime.ParseMonth(name)
}

func parseDate(s string) (engine.Date, error) {
	d, err := engine.ParseDate(s)
	if err != nil {
		return engine.Date{}, fmt.Errorf("%s %q: %w", config.ErrPolicyDate, s, err)
	}
	return d, nil
}

func parseWeekday(name string) (time.Weekday, bool) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(wd.String(), name) {
			return wd, true
		}
	}
	return 0, false
}
