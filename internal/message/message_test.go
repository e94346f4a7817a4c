package message_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivancheban/salary-bot/internal/config"
	"github.com/ivancheban/salary-bot/internal/message"
)

func kyiv(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Kyiv")
	require.NoError(t, err)
	return loc
}

// TestCountdown_English covers every band of the countdown.
func TestCountdown_English(t *testing.T) {
	loc := kyiv(t)
	r := message.NewRenderer("en")
	next := time.Date(2024, time.June, 20, 12, 10, 0, 0, loc)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			name: "Same calendar day before pay time",
			now:  time.Date(2024, time.June, 20, 8, 0, 0, 0, loc),
			want: config.FallbackSalaryDay,
		},
		{
			name: "Same calendar day after pay time",
			now:  time.Date(2024, time.June, 20, 18, 0, 0, 0, loc),
			want: config.FallbackSalaryDay,
		},
		{
			name: "Under a day",
			now:  time.Date(2024, time.June, 19, 14, 5, 30, 0, loc),
			want: "⏰ Only 22h 4m 30s left until Salary Day! 💰 Get ready to celebrate! 🎉",
		},
		{
			name: "One day",
			now:  time.Date(2024, time.June, 19, 10, 0, 0, 0, loc),
			want: "⏰ Only 1 day and 2h 10m left until Salary Day! 💰 Get ready to celebrate! 🎉",
		},
		{
			name: "Two days",
			now:  time.Date(2024, time.June, 18, 9, 0, 0, 0, loc),
			want: config.FallbackTwoDaysLeft,
		},
		{
			name: "Three days",
			now:  time.Date(2024, time.June, 17, 9, 0, 0, 0, loc),
			want: config.FallbackThreeDaysLeft,
		},
		{
			name: "Full countdown",
			now:  time.Date(2024, time.June, 3, 9, 0, 0, 0, loc),
			want: "⏳ Time until next salary: 17d 3h 10m 0s\n📆 Next salary: June 20, 2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Countdown(tt.now, next))
		})
	}
}

// TestCountdown_Past reports a calculation error for a date already gone.
func TestCountdown_Past(t *testing.T) {
	loc := kyiv(t)
	r := message.NewRenderer("en")

	now := time.Date(2024, time.June, 21, 9, 0, 0, 0, loc)
	next := time.Date(2024, time.June, 20, 12, 10, 0, 0, loc)
	assert.Equal(t, config.FallbackCalcError, r.Countdown(now, next))
}

// TestCountdown_ZoneOfNext reads "same day" in the zone of the pay date.
// 22:30 UTC on June 19 is already June 20 in Kyiv.
func TestCountdown_ZoneOfNext(t *testing.T) {
	loc := kyiv(t)
	r := message.NewRenderer("en")

	now := time.Date(2024, time.June, 19, 22, 30, 0, 0, time.UTC)
	next := time.Date(2024, time.June, 20, 12, 10, 0, 0, loc)
	assert.Equal(t, config.FallbackSalaryDay, r.Countdown(now, next))
}

func TestCountdown_Ukrainian(t *testing.T) {
	loc := kyiv(t)
	r := message.NewRenderer("uk")
	require.Equal(t, "uk", r.Language())

	next := time.Date(2024, time.June, 20, 12, 10, 0, 0, loc)
	got := r.Countdown(time.Date(2024, time.June, 3, 9, 0, 0, 0, loc), next)
	assert.Contains(t, got, "17 д 3 год 10 хв 0 с")
	assert.Contains(t, got, "20.06.2024")

	assert.Equal(t, "Вибачте, сталася помилка.", r.ErrorReply())
}

func TestNewRenderer_Fallback(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"uk-UA", "uk"},
		{"en-GB", "en"},
		{"fr", "en"},
		{"", "en"},
		{"not a tag", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, message.NewRenderer(tt.in).Language())
		})
	}

	assert.Equal(t, config.FallbackErrorReply, message.NewRenderer("fr").ErrorReply())
}

func TestNormalize(t *testing.T) {
	code, err := message.Normalize("UK")
	require.NoError(t, err)
	assert.Equal(t, "uk", code)

	_, err = message.Normalize("de")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrLanguage)
}

// TestI18nIntegrity ensures every translation key defined in config.go
// exists in every bundled locale file.
func TestI18nIntegrity(t *testing.T) {
	keysToCheck := []string{
		config.TKeySalaryDay,
		config.TKeyCalcError,
		config.TKeyHoursLeft,
		config.TKeyOneDayLeft,
		config.TKeyTwoDaysLeft,
		config.TKeyThreeDaysLeft,
		config.TKeyCountdown,
		config.TKeyErrorReply,
		config.TKeyFormatDate,
	}

	for _, lang := range config.SupportedLanguages {
		path := filepath.Join(config.LocaleDir, fmt.Sprintf(config.LocaleFileFormat, lang))
		content, err := os.ReadFile(path)
		require.NoError(t, err, "Must load %s", path)

		var jsonMap map[string]string
		require.NoError(t, json.Unmarshal(content, &jsonMap), "JSON must be valid")

		for _, key := range keysToCheck {
			_, exists := jsonMap[key]
			assert.Truef(t, exists, "Key '%s' defined in config.go is missing in %s", key, path)
		}
		assert.Len(t, jsonMap, len(keysToCheck), "%s has keys not defined in config.go", path)
	}
}
