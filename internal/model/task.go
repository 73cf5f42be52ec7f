package model

import (
	"time"

	"habit-tracker/internal/recurrence"
)

// RecurringTask is a habit the user tracks on a recurring schedule.
// Exactly one of DayOfWeek/DayOfMonth is set, matching Frequency; the
// invariant is enforced on creation and updates, never assumed here.
type RecurringTask struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index"`
	Title       string
	Description string
	Frequency   string
	DayOfWeek   *int // weekly tasks, 0=Sunday..6=Saturday
	DayOfMonth  *int // monthly tasks, 1..31
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Completions []Completion `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// Rule exposes the task's schedule to the recurrence core.
func (t *RecurringTask) Rule() recurrence.Rule {
	return recurrence.Rule{
		Frequency:  recurrence.Frequency(t.Frequency),
		DayOfWeek:  t.DayOfWeek,
		DayOfMonth: t.DayOfMonth,
	}
}
