package engine_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivancheban/salary-bot/internal/engine"
)

func TestBuildFeed(t *testing.T) {
	r := newUkraineResolver(t)
	now := time.Date(2024, time.June, 1, 8, 0, 0, 0, r.Location())

	data, err := engine.BuildFeed(r, now)
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "PRODID:-//Salary Bot//Engine//EN")
	assert.Contains(t, out, "X-WR-TIMEZONE;VALUE=TEXT:Europe/Kyiv")
	assert.Contains(t, out, "X-WR-CALNAME;VALUE=TEXT:")
	assert.Equal(t, 20, strings.Count(out, "BEGIN:VEVENT"), "two years of payments")

	// 12:10 in Kyiv is 09:10 UTC during summer time.
	assert.Contains(t, out, "DTSTART:20240605T091000Z")
	assert.Contains(t, out, "UID:2024-06-30@salarybot")
	assert.Contains(t, out, "DTSTART:20240627T091000Z")
	assert.Contains(t, out, "SUMMARY:Salary (manual schedule)")
	assert.Contains(t, out, "DTSTAMP:20240601T050000Z")

	again, err := engine.BuildFeed(r, now)
	require.NoError(t, err)
	assert.Equal(t, data, again, "output depends only on its inputs")
}

func TestBuildFeed_Error(t *testing.T) {
	r := engine.NewResolver(engine.Schedule{}, nil)

	_, err := engine.BuildFeed(r, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, engine.ErrUnresolvable)
}
