// Package timefmt formats the clock, header date and greeting shown on the
// weather screen.
package timefmt

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Greeting is the time-of-day salutation in the screen header.
type Greeting string

const (
	Morning   Greeting = "Good Morning"
	Afternoon Greeting = "Good Afternoon"
	Evening   Greeting = "Good Evening"
	Night     Greeting = "Good Night"
)

var upper = cases.Upper(language.English)

// FormatClock renders a 12-hour clock such as "4:52pm".
func FormatClock(t time.Time) string {
	meridiem := "am"
	if t.Hour() >= 12 {
		meridiem = "pm"
	}

	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}

	return fmt.Sprintf("%d:%02d%s", hour, t.Minute(), meridiem)
}

// FormatHeaderDateTime renders the header line, e.g. "MONDAY 18th 4:52pm".
func FormatHeaderDateTime(t time.Time) string {
	day := t.Day()
	return fmt.Sprintf("%s %d%s %s", upper.String(t.Weekday().String()), day, ordinalSuffix(day), FormatClock(t))
}

// ordinalSuffix returns the day-of-month suffix. The 11th-13th use an
// upper-case "TH", unlike every other day.
func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "TH"
	}

	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// GreetingFor partitions the hour of day into the four greetings.
func GreetingFor(t time.Time) Greeting {
	hour := t.Hour()
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 22:
		return Evening
	default:
		return Night
	}
}

// FormatSunTime renders a provider epoch (seconds) in loc with FormatClock.
// A nil loc means time.Local.
func FormatSunTime(epoch int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return FormatClock(time.Unix(epoch, 0).In(loc))
}
