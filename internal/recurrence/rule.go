package recurrence

import (
	"fmt"
	"time"
)

// Frequency tells how often a habit recurs.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// Rule describes a recurrence schedule. Exactly one of DayOfWeek/DayOfMonth
// is set, matching Frequency; daily rules set neither.
type Rule struct {
	Frequency  Frequency
	DayOfWeek  *int // 0=Sunday..6=Saturday, weekly rules only
	DayOfMonth *int // 1..31, monthly rules only
}

// NewDailyRule returns a rule due every day.
func NewDailyRule() Rule {
	return Rule{Frequency: Daily}
}

// NewWeeklyRule returns a rule due on the given weekday (0=Sunday..6=Saturday).
func NewWeeklyRule(dayOfWeek int) Rule {
	return Rule{Frequency: Weekly, DayOfWeek: &dayOfWeek}
}

// NewMonthlyRule returns a rule due on the given day of the month (1..31).
func NewMonthlyRule(dayOfMonth int) Rule {
	return Rule{Frequency: Monthly, DayOfMonth: &dayOfMonth}
}

// Validate rejects rules whose day fields do not match the frequency.
// Invalid rules are refused at construction and never evaluated.
func (r Rule) Validate() error {
	switch r.Frequency {
	case Daily:
		if r.DayOfWeek != nil || r.DayOfMonth != nil {
			return fmt.Errorf("daily rule must not set a day field")
		}
	case Weekly:
		if r.DayOfWeek == nil {
			return fmt.Errorf("weekly rule requires a day of week")
		}
		if r.DayOfMonth != nil {
			return fmt.Errorf("weekly rule must not set a day of month")
		}
		if *r.DayOfWeek < 0 || *r.DayOfWeek > 6 {
			return fmt.Errorf("day of week %d out of range 0..6", *r.DayOfWeek)
		}
	case Monthly:
		if r.DayOfMonth == nil {
			return fmt.Errorf("monthly rule requires a day of month")
		}
		if r.DayOfWeek != nil {
			return fmt.Errorf("monthly rule must not set a day of week")
		}
		if *r.DayOfMonth < 1 || *r.DayOfMonth > 31 {
			return fmt.Errorf("day of month %d out of range 1..31", *r.DayOfMonth)
		}
	default:
		return fmt.Errorf("unknown frequency %q", r.Frequency)
	}
	return nil
}

// IsDueOn reports whether the rule is due on the given calendar day.
// Time of day and location offsets are ignored; only the date matters.
// Monthly rules in months shorter than DayOfMonth are clamped to the last
// day of that month, so a day-31 rule is due on April 30.
func (r Rule) IsDueOn(date time.Time) bool {
	day := DateOf(date)
	switch r.Frequency {
	case Daily:
		return true
	case Weekly:
		return r.DayOfWeek != nil && int(day.Weekday()) == *r.DayOfWeek
	case Monthly:
		if r.DayOfMonth == nil {
			return false
		}
		due := *r.DayOfMonth
		if last := DaysInMonth(day.Month(), day.Year()); due > last {
			due = last
		}
		return day.Day() == due
	default:
		return false
	}
}

// Describe renders the schedule for display, e.g. "weekly on Monday".
func (r Rule) Describe() string {
	switch r.Frequency {
	case Daily:
		return "every day"
	case Weekly:
		if r.DayOfWeek == nil {
			return "weekly"
		}
		return fmt.Sprintf("weekly on %s", time.Weekday(*r.DayOfWeek))
	case Monthly:
		if r.DayOfMonth == nil {
			return "monthly"
		}
		return fmt.Sprintf("monthly on day %d", *r.DayOfMonth)
	default:
		return string(r.Frequency)
	}
}

// DateOf strips the time component, leaving midnight UTC of the same
// calendar day. All core date comparisons go through this.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(month time.Month, year int) int {
	// Move to the first of the next month, roll back a day.
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}
