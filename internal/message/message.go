// Package message renders the countdown texts sent to the chat.
package message

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/ivancheban/salary-bot/internal/config"
)

//go:embed locales/*.json
var localeFS embed.FS

var loadBundle = sync.OnceValues(newBundle)

// newBundle loads the message file of every supported language. English
// is the source language; the others are translations of its keys.
func newBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	var errs []error
	for _, lang := range config.SupportedLanguages {
		file := path.Join(config.LocaleDir, fmt.Sprintf(config.LocaleFileFormat, lang))
		mf, err := bundle.LoadMessageFileFS(localeFS, file)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, file, err))
			continue
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, lang,
			config.LogKeyKeys, len(mf.Messages),
		)
	}
	return bundle, errors.Join(errs...)
}

// bundle returns the shared bundle. A locale that failed to load leaves
// its keys to the English fallbacks in msg.
func bundle() *i18n.Bundle {
	b, err := loadBundle()
	if err != nil {
		slog.Error(config.ErrLocaleLoad,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}
	return b
}

// Normalize maps a language tag such as "uk-UA" to a supported base
// language. It fails for malformed or unsupported tags.
func Normalize(lang string) (string, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", config.ErrLanguage, lang, err)
	}
	base, _ := tag.Base()
	code := base.String()
	if !slices.Contains(config.SupportedLanguages, code) {
		return "", fmt.Errorf("%s: %q", config.ErrLanguage, lang)
	}
	return code, nil
}

// Renderer produces countdown messages in one language. It is safe for
// concurrent use.
type Renderer struct {
	lang      string
	localizer *i18n.Localizer
}

// NewRenderer returns a renderer for lang. An unknown language falls back
// to English.
func NewRenderer(lang string) *Renderer {
	code, err := Normalize(lang)
	if err != nil {
		slog.Warn(config.ErrLanguage,
			config.LogKeyComponent, config.CompMessage,
			config.LogKeyLang, lang,
			config.LogKeyError, err,
		)
		code = config.DefaultLanguage
	}
	return &Renderer{
		lang:      code,
		localizer: i18n.NewLocalizer(bundle(), code),
	}
}

// Language returns the effective language code.
func (r *Renderer) Language() string {
	return r.lang
}

// Countdown describes the time left from now until next. Output bands:
// same calendar day, past, under a day, one day, two days, three days and
// a full countdown with the formatted date.
func (r *Renderer) Countdown(now, next time.Time) string {
	loc := next.Location()
	ny, nm, nd := now.In(loc).Date()
	sy, sm, sd := next.Date()
	if ny == sy && nm == sm && nd == sd {
		return r.msg(config.TKeySalaryDay, nil, config.FallbackSalaryDay)
	}

	diff := next.Sub(now)
	if diff < 0 {
		slog.Warn(config.FallbackCalcError,
			config.LogKeyComponent, config.CompMessage,
			config.LogKeyDate, next.Format(config.DateTimeLayout),
		)
		return r.msg(config.TKeyCalcError, nil, config.FallbackCalcError)
	}

	days := int(diff / (24 * time.Hour))
	hours := int(diff/time.Hour) % 24
	minutes := int(diff/time.Minute) % 60
	seconds := int(diff/time.Second) % 60

	data := map[string]any{
		"Days":    days,
		"Hours":   hours,
		"Minutes": minutes,
		"Seconds": seconds,
	}

	switch days {
	case 0:
		return r.msg(config.TKeyHoursLeft, data,
			fmt.Sprintf(config.FallbackHoursLeft, hours, minutes, seconds))
	case 1:
		return r.msg(config.TKeyOneDayLeft, data,
			fmt.Sprintf(config.FallbackOneDayLeft, hours, minutes))
	case 2:
		return r.msg(config.TKeyTwoDaysLeft, nil, config.FallbackTwoDaysLeft)
	case 3:
		return r.msg(config.TKeyThreeDaysLeft, nil, config.FallbackThreeDaysLeft)
	}

	layout := r.msg(config.TKeyFormatDate, nil, config.DefaultLongDate)
	data["Date"] = next.Format(layout)
	return r.msg(config.TKeyCountdown, data,
		fmt.Sprintf(config.FallbackCountdown, days, hours, minutes, seconds, data["Date"]))
}

// ErrorReply is the apology sent when a date cannot be computed.
func (r *Renderer) ErrorReply() string {
	return r.msg(config.TKeyErrorReply, nil, config.FallbackErrorReply)
}

// msg translates key, returning fallback when the key is missing.
func (r *Renderer) msg(key string, data map[string]any, fallback string) string {
	out, err := r.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil || out == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return fallback
	}
	return out
}
