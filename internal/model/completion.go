package model

import "time"

// DateLayout is the storage format for completion dates (date only, no time).
const DateLayout = "2006-01-02"

// Completion records that a recurring task was done on a calendar date.
// TaskID + CompletedDate carry a unique index so a double toggle or a
// retried request can never produce two records for the same day.
type Completion struct {
	ID            uint   `gorm:"primaryKey"`
	TaskID        uint   `gorm:"index;index:idx_task_completed_date,unique"`
	CompletedDate string `gorm:"index:idx_task_completed_date,unique"`
	CreatedAt     time.Time
}

// Date parses the stored calendar date.
func (c *Completion) Date() (time.Time, error) {
	return time.Parse(DateLayout, c.CompletedDate)
}
