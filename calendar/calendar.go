/*
Package calendar provides business-day arithmetic for lead-time promises.

PURPOSE:
  A promised ship date is always expressed in business days local to the
  customer organization's timezone. This package owns that arithmetic:
  advancing N business days, counting business days between dates, and
  enumerating the business days of a shipping window.

KEY CONCEPTS:
  - Config: timezone + holiday set + weekend weekday set. A "day" boundary
    is local to the configured timezone, never UTC.
  - Business day: not a weekend weekday, not in the holiday set, evaluated
    in the configured timezone.
  - Holidays are plain YYYY-MM-DD strings, matching how operators enter
    them and how the store persists them.

DESIGN PRINCIPLES:
  1. Iterative stepping: all arithmetic advances one calendar day at a
     time. Windows here are days, not years; clarity beats cleverness.
  2. Timezone first: every entry point normalizes into the configured
     zone before any weekday or holiday test.
  3. Unknown timezones degrade to UTC rather than failing a price quote.

SEE ALSO:
  - percentile.go: Statistical helpers over utilization samples
  - leadtime/engine.go: The consumer of both
*/
package calendar

import (
	"time"
)

// DateFormat is the wire format for calendar days throughout the engine.
const DateFormat = "2006-01-02"

// Config controls what counts as a business day.
type Config struct {
	Timezone    string
	Holidays    []string       // YYYY-MM-DD strings
	WeekendDays []time.Weekday // default Saturday/Sunday
}

// Location resolves the configured timezone, falling back to UTC when the
// identifier is empty or unknown.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) weekend() []time.Weekday {
	if len(c.WeekendDays) == 0 {
		return []time.Weekday{time.Saturday, time.Sunday}
	}
	return c.WeekendDays
}

func (c Config) isWeekend(t time.Time) bool {
	wd := t.Weekday()
	for _, w := range c.weekend() {
		if wd == w {
			return true
		}
	}
	return false
}

func (c Config) isHoliday(t time.Time) bool {
	date := t.Format(DateFormat)
	for _, h := range c.Holidays {
		if h == date {
			return true
		}
	}
	return false
}

// =============================================================================
// BUSINESS-DAY ARITHMETIC
// =============================================================================

// AddBusinessDays advances n business days from start, skipping weekend days
// and holidays. n == 0 returns start normalized into the configured timezone.
func AddBusinessDays(start time.Time, n int, cfg Config) time.Time {
	current := start.In(cfg.Location())

	added := 0
	for added < n {
		current = current.AddDate(0, 0, 1)
		if cfg.isWeekend(current) || cfg.isHoliday(current) {
			continue
		}
		added++
	}
	return current
}

// CountBusinessDays counts business days strictly after start, stepping one
// calendar day at a time up to end.
func CountBusinessDays(start, end time.Time, cfg Config) int {
	loc := cfg.Location()
	current := start.In(loc)
	stop := end.In(loc)

	count := 0
	for current.Before(stop) {
		current = current.AddDate(0, 0, 1)
		if cfg.isWeekend(current) || cfg.isHoliday(current) {
			continue
		}
		count++
	}
	return count
}

// BusinessDaysWindow returns the ordered business-day date strings between
// start and end, inclusive of both ends.
func BusinessDaysWindow(start, end time.Time, cfg Config) []string {
	loc := cfg.Location()
	current := start.In(loc)
	stop := end.In(loc)

	var days []string
	for !current.After(stop) {
		if !cfg.isWeekend(current) && !cfg.isHoliday(current) {
			days = append(days, current.Format(DateFormat))
		}
		current = current.AddDate(0, 0, 1)
	}
	return days
}

// IsBusinessDay reports whether date is a business day under cfg.
func IsBusinessDay(date time.Time, cfg Config) bool {
	d := date.In(cfg.Location())
	return !cfg.isWeekend(d) && !cfg.isHoliday(d)
}

// NextBusinessDay returns the first business day after date.
func NextBusinessDay(date time.Time, cfg Config) time.Time {
	return AddBusinessDays(date, 1, cfg)
}

// =============================================================================
// DATE FORMATTING
// =============================================================================

// FormatDate renders t as YYYY-MM-DD in the given timezone.
func FormatDate(t time.Time, tz string) string {
	return t.In(Config{Timezone: tz}.Location()).Format(DateFormat)
}

// TodayIn returns today's date string in the given timezone.
func TodayIn(tz string) string {
	return FormatDate(time.Now(), tz)
}

// ParseDate parses a YYYY-MM-DD string at midnight in the given timezone.
func ParseDate(date, tz string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, date, Config{Timezone: tz}.Location())
}
