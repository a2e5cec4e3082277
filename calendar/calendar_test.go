package calendar_test

import (
	"testing"
	"time"

	"github.com/warp/leadtime-engine/calendar"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func utcDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// ADD BUSINESS DAYS
// =============================================================================

func TestAddBusinessDays_SkipsWeekend(t *testing.T) {
	// GIVEN: A Friday
	// WHEN: Adding one business day
	// THEN: Result lands on Monday, not Saturday

	friday := utcDate(2026, time.March, 6)
	got := calendar.AddBusinessDays(friday, 1, calendar.Config{})

	want := utcDate(2026, time.March, 9) // Monday
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAddBusinessDays_SkipsHolidays(t *testing.T) {
	// GIVEN: A Thursday with Friday declared a holiday
	// WHEN: Adding one business day
	// THEN: The holiday and the weekend are both skipped

	thursday := utcDate(2026, time.March, 5)
	cfg := calendar.Config{Holidays: []string{"2026-03-06"}}

	got := calendar.AddBusinessDays(thursday, 1, cfg)

	want := utcDate(2026, time.March, 9) // Monday
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAddBusinessDays_ZeroReturnsStart(t *testing.T) {
	start := utcDate(2026, time.March, 7) // a Saturday, deliberately
	got := calendar.AddBusinessDays(start, 0, calendar.Config{})

	if !got.Equal(start) {
		t.Errorf("expected start unchanged, got %v", got)
	}
}

func TestAddBusinessDays_FullWeek(t *testing.T) {
	// GIVEN: A Monday
	// WHEN: Adding five business days
	// THEN: Result is the following Monday

	monday := utcDate(2026, time.March, 2)
	got := calendar.AddBusinessDays(monday, 5, calendar.Config{})

	want := utcDate(2026, time.March, 9)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAddBusinessDays_CustomWeekend(t *testing.T) {
	// GIVEN: A Friday-Saturday weekend (common in some regions)
	// WHEN: Adding one business day from Thursday
	// THEN: Result is Sunday

	cfg := calendar.Config{WeekendDays: []time.Weekday{time.Friday, time.Saturday}}
	thursday := utcDate(2026, time.March, 5)

	got := calendar.AddBusinessDays(thursday, 1, cfg)

	want := utcDate(2026, time.March, 8) // Sunday
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// =============================================================================
// COUNT AND WINDOW
// =============================================================================

func TestCountBusinessDays_AcrossWeekend(t *testing.T) {
	// Friday through the next Friday: 5 business days strictly after start.
	start := utcDate(2026, time.March, 6)
	end := utcDate(2026, time.March, 13)

	got := calendar.CountBusinessDays(start, end, calendar.Config{})
	if got != 5 {
		t.Errorf("expected 5 business days, got %d", got)
	}
}

func TestBusinessDaysWindow_InclusiveBothEnds(t *testing.T) {
	// GIVEN: Monday through Friday
	// WHEN: Enumerating the window
	// THEN: All five weekdays appear, in order

	start := utcDate(2026, time.March, 2)
	end := utcDate(2026, time.March, 6)

	got := calendar.BusinessDaysWindow(start, end, calendar.Config{})

	want := []string{"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06"}
	if len(got) != len(want) {
		t.Fatalf("expected %d days, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("day %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestBusinessDaysWindow_ExcludesWeekendAndHoliday(t *testing.T) {
	start := utcDate(2026, time.March, 5) // Thursday
	end := utcDate(2026, time.March, 10)  // Tuesday
	cfg := calendar.Config{Holidays: []string{"2026-03-09"}}

	got := calendar.BusinessDaysWindow(start, end, cfg)

	// Thu, Fri, Tue. Sat/Sun weekend, Monday holiday.
	want := []string{"2026-03-05", "2026-03-06", "2026-03-10"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("day %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

// =============================================================================
// TIMEZONE HANDLING
// =============================================================================

func TestConfig_Location_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	cfg := calendar.Config{Timezone: "Not/AZone"}
	if got := cfg.Location(); got != time.UTC {
		t.Errorf("expected UTC fallback, got %v", got)
	}
}

func TestIsBusinessDay_EvaluatedInConfiguredTimezone(t *testing.T) {
	// GIVEN: Friday 23:00 UTC, which is already Saturday in Kolkata
	// WHEN: Checking business-day status under Asia/Kolkata
	// THEN: It is a weekend there

	fridayLateUTC := time.Date(2026, time.March, 6, 23, 0, 0, 0, time.UTC)
	cfg := calendar.Config{Timezone: "Asia/Kolkata"}

	if calendar.IsBusinessDay(fridayLateUTC, cfg) {
		t.Error("expected Saturday in Asia/Kolkata to be a weekend")
	}
	if !calendar.IsBusinessDay(fridayLateUTC, calendar.Config{}) {
		t.Error("expected Friday in UTC to be a business day")
	}
}

func TestParseDate_RoundTripsWithFormatDate(t *testing.T) {
	parsed, err := calendar.ParseDate("2026-03-06", "Asia/Kolkata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calendar.FormatDate(parsed, "Asia/Kolkata"); got != "2026-03-06" {
		t.Errorf("expected round trip, got %s", got)
	}
}
