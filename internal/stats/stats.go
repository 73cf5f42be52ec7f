// Package stats derives streak and success-rate metrics for recurring tasks
// from their completion history. All functions are pure: they never touch
// storage and never fail on sparse or empty data.
package stats

import (
	"time"

	"habit-tracker/internal/recurrence"
)

const (
	// DefaultWindowDays bounds longest-streak and success-rate computation.
	DefaultWindowDays = 30
	// DefaultLookbackDays bounds the current-streak backward walk so it
	// always terminates.
	DefaultLookbackDays = 365
	// DefaultHistoryDays is the span of the completion history view.
	DefaultHistoryDays = 7
)

// Stats summarises a task's recent performance. All fields are non-negative;
// SuccessRate is a whole percentage in [0, 100].
type Stats struct {
	CurrentStreak int
	LongestStreak int
	SuccessRate   int
}

// HistoryEntry is one day in a completion history view.
type HistoryEntry struct {
	Date      time.Time
	Completed bool
}

// DateSet holds normalized calendar dates for membership queries.
type DateSet map[time.Time]struct{}

// NewDateSet builds a set from completion dates, normalizing each to
// midnight UTC. Duplicates collapse.
func NewDateSet(dates []time.Time) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[recurrence.DateOf(d)] = struct{}{}
	}
	return s
}

// Contains reports whether the set holds the given calendar day.
func (s DateSet) Contains(day time.Time) bool {
	_, ok := s[recurrence.DateOf(day)]
	return ok
}

// Compute derives streaks and success rate for a rule over a trailing
// window ending today. createdAt bounds the schedule: days before the rule
// existed count as not due, so a task created mid-window is not penalised
// for days it could not have been done. windowDays and lookbackDays fall
// back to the defaults when non-positive.
func Compute(rule recurrence.Rule, createdAt time.Time, completed DateSet, today time.Time, windowDays, lookbackDays int) Stats {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}

	day := recurrence.DateOf(today)
	created := recurrence.DateOf(createdAt)

	st := Stats{
		CurrentStreak: currentStreak(rule, created, completed, day, lookbackDays),
	}
	st.LongestStreak, st.SuccessRate = scanWindow(rule, created, completed, day, windowDays)

	// A run that started before the window still counts as the longest.
	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}
	return st
}

// currentStreak walks backward from today one day at a time. Due-and-completed
// days extend the streak, non-due days are skipped, and the first
// due-but-incomplete day ends the walk.
func currentStreak(rule recurrence.Rule, created time.Time, completed DateSet, today time.Time, lookbackDays int) int {
	streak := 0
	for i := 0; i < lookbackDays; i++ {
		day := today.AddDate(0, 0, -i)
		if day.Before(created) {
			break
		}
		if !rule.IsDueOn(day) {
			continue
		}
		if !completed.Contains(day) {
			break
		}
		streak++
	}
	return streak
}

// scanWindow walks the trailing window forward, tracking the longest run of
// completed due days and the completion rate over all due days.
func scanWindow(rule recurrence.Rule, created time.Time, completed DateSet, today time.Time, windowDays int) (longest, successRate int) {
	var run, dueDays, doneDays int

	for i := windowDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		if day.Before(created) || !rule.IsDueOn(day) {
			continue
		}
		dueDays++
		if completed.Contains(day) {
			doneDays++
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	if dueDays > 0 {
		successRate = int(float64(doneDays)/float64(dueDays)*100 + 0.5)
	}
	return longest, successRate
}

// History returns exactly `days` entries, oldest first, ending at today.
// Days with no completion record come back with Completed=false, so sparse
// data still renders a full-width sparkline.
func History(completed DateSet, today time.Time, days int) []HistoryEntry {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	day := recurrence.DateOf(today)

	entries := make([]HistoryEntry, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := day.AddDate(0, 0, -i)
		entries = append(entries, HistoryEntry{Date: d, Completed: completed.Contains(d)})
	}
	return entries
}
