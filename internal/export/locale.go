package export

import (
	"strings"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
)

// localeLayout formats dates for one supported display language.
type localeLayout struct {
	date     string
	dateTime string
	months   *[12]string
}

var deMonths = [12]string{"Jan.", "Feb.", "März", "Apr.", "Mai", "Juni", "Juli", "Aug.", "Sept.", "Okt.", "Nov.", "Dez."}

var frMonths = [12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."}

// supported must stay index-aligned with layouts. The first entry is the fallback.
var supported = []language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.German,
	language.French,
}

var layouts = []localeLayout{
	{date: "Jan 02, 2006", dateTime: "1/2/2006, 3:04:05 PM"},
	{date: "02 Jan 2006", dateTime: "02/01/2006, 15:04:05"},
	{date: "02. Jan 2006", dateTime: "2.1.2006, 15:04:05", months: &deMonths},
	{date: "02 Jan 2006", dateTime: "02/01/2006 15:04:05", months: &frMonths},
}

var matcher = language.NewMatcher(supported)

// MatchLocale picks the best supported display language for an
// Accept-Language header. Unparseable or empty headers yield en-US.
func MatchLocale(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supported[0]
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

func layoutFor(tag language.Tag) localeLayout {
	_, idx, _ := matcher.Match(tag)
	return layouts[idx]
}

func (l localeLayout) formatDate(t time.Time) string {
	s := t.Format(l.date)
	if l.months != nil {
		s = strings.Replace(s, t.Format("Jan"), l.months[t.Month()-1], 1)
	}
	return s
}

func (l localeLayout) formatDateTime(t time.Time) string {
	return t.Format(l.dateTime)
}
