package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"github.com/ivancheban/salary-bot/internal/config"
)

// BuildFeed renders the salary dates of now's year and the following year
// as an iCalendar document. DTSTAMP is taken from now so the output is a
// pure function of its inputs.
func BuildFeed(r *Resolver, now time.Time) ([]byte, error) {
	now = now.In(r.Location())

	var dates []SalaryDate
	for _, y := range []int{now.Year(), now.Year() + 1} {
		list, err := r.Year(y)
		if err != nil {
			return nil, err
		}
		dates = append(dates, list...)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropXWRTZ, r.Location().String())
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, sd := range dates {
		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, sd.Target.Format(config.DateLayout), config.ICalDomain))

		summary := config.ICalSummary
		if sd.Override {
			summary = config.ICalOverride
		}
		event.Props.SetText(config.PropSummary, summary)

		// UTC avoids emitting a TZID that would need a VTIMEZONE block.
		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDateTime(sd.At.UTC())
		event.Props.Set(dtStartProp)
		event.Props.Set(dtStampProp)

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgFeedRefreshed,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeySizeBytes, buf.Len(),
	)
	return buf.Bytes(), nil
}
