package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidate(t *testing.T) {
	three, bad := 3, 9
	day31, day0 := 31, 0

	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{name: "daily", rule: NewDailyRule()},
		{name: "daily with weekday", rule: Rule{Frequency: Daily, DayOfWeek: &three}, wantErr: true},
		{name: "daily with monthday", rule: Rule{Frequency: Daily, DayOfMonth: &three}, wantErr: true},
		{name: "weekly", rule: NewWeeklyRule(3)},
		{name: "weekly missing day", rule: Rule{Frequency: Weekly}, wantErr: true},
		{name: "weekly day out of range", rule: NewWeeklyRule(9), wantErr: true},
		{name: "weekly with monthday", rule: Rule{Frequency: Weekly, DayOfWeek: &three, DayOfMonth: &three}, wantErr: true},
		{name: "monthly", rule: NewMonthlyRule(31)},
		{name: "monthly missing day", rule: Rule{Frequency: Monthly}, wantErr: true},
		{name: "monthly day zero", rule: Rule{Frequency: Monthly, DayOfMonth: &day0}, wantErr: true},
		{name: "monthly with weekday", rule: Rule{Frequency: Monthly, DayOfMonth: &day31, DayOfWeek: &bad}, wantErr: true},
		{name: "unknown frequency", rule: Rule{Frequency: "yearly"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.rule.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDailyAlwaysDue(t *testing.T) {
	rule := NewDailyRule()
	for d := 0; d < 40; d++ {
		day := date(2024, time.January, 1).AddDate(0, 0, d)
		if !rule.IsDueOn(day) {
			t.Fatalf("daily rule not due on %s", day.Format("2006-01-02"))
		}
	}
}

func TestWeeklyDueExactlyOneWeekday(t *testing.T) {
	for want := 0; want <= 6; want++ {
		rule := NewWeeklyRule(want)
		// 2024-03-03 is a Sunday; the following seven days cover each weekday once.
		dueCount := 0
		for d := 0; d < 7; d++ {
			day := date(2024, time.March, 3).AddDate(0, 0, d)
			if rule.IsDueOn(day) {
				dueCount++
				if int(day.Weekday()) != want {
					t.Errorf("rule day %d due on %s", want, day.Weekday())
				}
			}
		}
		if dueCount != 1 {
			t.Errorf("rule day %d due on %d days of the week, want 1", want, dueCount)
		}
	}
}

func TestMonthlyDue(t *testing.T) {
	tests := []struct {
		name string
		day  int
		on   time.Time
		want bool
	}{
		{name: "exact day", day: 15, on: date(2024, time.June, 15), want: true},
		{name: "other day", day: 15, on: date(2024, time.June, 14), want: false},
		{name: "day 31 in 31-day month", day: 31, on: date(2024, time.May, 31), want: true},
		{name: "day 31 clamped to April 30", day: 31, on: date(2024, time.April, 30), want: true},
		{name: "day 31 not due on April 29", day: 31, on: date(2024, time.April, 29), want: false},
		{name: "day 30 clamped to Feb 29 leap year", day: 30, on: date(2024, time.February, 29), want: true},
		{name: "day 30 clamped to Feb 28 common year", day: 30, on: date(2023, time.February, 28), want: true},
		{name: "day 29 due on Feb 29 leap year", day: 29, on: date(2024, time.February, 29), want: true},
		{name: "day 1 first of month", day: 1, on: date(2024, time.July, 1), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := NewMonthlyRule(tt.day)
			if got := rule.IsDueOn(tt.on); got != tt.want {
				t.Errorf("IsDueOn(%s) = %v, want %v", tt.on.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestIsDueOnIgnoresTimeOfDay(t *testing.T) {
	rule := NewWeeklyRule(1) // Monday
	lateMonday := time.Date(2024, time.March, 4, 23, 59, 59, 0, time.UTC)
	if !rule.IsDueOn(lateMonday) {
		t.Error("rule should be due regardless of time of day")
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		month time.Month
		year  int
		want  int
	}{
		{time.January, 2024, 31},
		{time.February, 2024, 29},
		{time.February, 2023, 28},
		{time.April, 2024, 30},
		{time.December, 2024, 31},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.month, tt.year); got != tt.want {
			t.Errorf("DaysInMonth(%s %d) = %d, want %d", tt.month, tt.year, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := NewDailyRule().Describe(); got != "every day" {
		t.Errorf("daily: %q", got)
	}
	if got := NewWeeklyRule(1).Describe(); got != "weekly on Monday" {
		t.Errorf("weekly: %q", got)
	}
	if got := NewMonthlyRule(15).Describe(); got != "monthly on day 15" {
		t.Errorf("monthly: %q", got)
	}
}
