package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"habit-tracker/internal/model"
	"habit-tracker/internal/recurrence"
)

// CompletionRepository manages per-day completion records. The unique index
// on (task_id, completed_date) is the source of truth for the one-record-per-day
// invariant; this layer only reacts to it.
type CompletionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// IsCompletedOn reports whether a record exists for the task and calendar day.
func (r *CompletionRepository) IsCompletedOn(ctx context.Context, taskID uint, day time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Completion{}).
		Where("task_id = ? AND completed_date = ?", taskID, dateKey(day)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count completion: %w", err)
	}
	return count > 0, nil
}

// Toggle flips completion state for (taskID, day): an existing record is
// removed, a missing one is created. Returns the resulting completed state.
// A concurrent insert racing past the existence check trips the unique index
// and is treated as the toggle having already happened.
func (r *CompletionRepository) Toggle(ctx context.Context, taskID uint, day time.Time) (bool, error) {
	key := dateKey(day)
	db := r.db.WithContext(ctx)

	res := db.Where("task_id = ? AND completed_date = ?", taskID, key).Delete(&model.Completion{})
	if res.Error != nil {
		return false, fmt.Errorf("remove completion: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	record := model.Completion{TaskID: taskID, CompletedDate: key}
	if err := db.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return true, nil
		}
		return false, fmt.Errorf("insert completion: %w", err)
	}
	return true, nil
}

// ListInWindow returns the task's completion dates within [start, end],
// inclusive on both ends, in ascending order.
func (r *CompletionRepository) ListInWindow(ctx context.Context, taskID uint, start, end time.Time) ([]time.Time, error) {
	var records []model.Completion
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND completed_date >= ? AND completed_date <= ?", taskID, dateKey(start), dateKey(end)).
		Order("completed_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}

	dates := make([]time.Time, 0, len(records))
	for _, rec := range records {
		d, err := rec.Date()
		if err != nil {
			// A malformed row cannot map to a calendar day; skip it rather
			// than fail the whole read.
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// dateKey normalizes to the stored YYYY-MM-DD form.
func dateKey(day time.Time) string {
	return recurrence.DateOf(day).Format(model.DateLayout)
}
