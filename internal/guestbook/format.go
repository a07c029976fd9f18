package guestbook

import (
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/language"
)

type dateLocale struct {
	tag    language.Tag
	format func(t time.Time) string
}

func layout(l string) func(time.Time) string {
	return func(t time.Time) string {
		return t.Format(l)
	}
}

func koreanDate(t time.Time) string {
	period := "오전"
	if t.Hour() >= 12 {
		period = "오후"
	}
	return t.Format("2006. 01. 02. ") + period + t.Format(" 03:04")
}

var dateLocales = []dateLocale{
	{language.AmericanEnglish, layout("01/02/2006, 03:04 PM")},
	{language.BritishEnglish, layout("02/01/2006, 15:04")},
	{language.Korean, koreanDate},
	{language.Japanese, layout("2006/01/02 15:04")},
	{language.German, layout("02.01.2006, 15:04")},
}

// DateFormatter renders entry timestamps for the locale a reader asks for.
type DateFormatter struct {
	locales []dateLocale
	matcher language.Matcher
}

// NewDateFormatter returns a formatter that falls back to the supported
// locale closest to fallback when nothing else matches.
func NewDateFormatter(fallback string) *DateFormatter {
	tags := make([]language.Tag, len(dateLocales))
	for i, l := range dateLocales {
		tags[i] = l.tag
	}

	_, first := language.MatchStrings(language.NewMatcher(tags), fallback)

	// The matcher's default is the first tag it knows about.
	locales := make([]dateLocale, 0, len(dateLocales))
	locales = append(locales, dateLocales[first])
	for i, l := range dateLocales {
		if i != first {
			locales = append(locales, l)
		}
	}

	tags = tags[:0]
	for _, l := range locales {
		tags = append(tags, l.tag)
	}

	return &DateFormatter{
		locales: locales,
		matcher: language.NewMatcher(tags),
	}
}

// Format renders createdAt for the given Accept-Language value. Timestamps
// that cannot be parsed are returned as they are.
func (f *DateFormatter) Format(createdAt, acceptLanguage string) string {
	t, err := dateparse.ParseStrict(createdAt)
	if err != nil {
		return createdAt
	}

	_, i := language.MatchStrings(f.matcher, acceptLanguage)
	return f.locales[i].format(t)
}
