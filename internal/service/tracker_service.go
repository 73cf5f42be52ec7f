package service

import (
	"context"
	"time"

	"habit-tracker/internal/model"
	"habit-tracker/internal/recurrence"
	"habit-tracker/internal/stats"
)

// CompletionStore is the persistence boundary for per-day completions.
type CompletionStore interface {
	IsCompletedOn(ctx context.Context, taskID uint, day time.Time) (bool, error)
	Toggle(ctx context.Context, taskID uint, day time.Time) (bool, error)
	ListInWindow(ctx context.Context, taskID uint, start, end time.Time) ([]time.Time, error)
}

// TrackerService is the read/toggle surface over recurrence and stats.
// Presentation layers (bot handlers, digests) go through it instead of
// reimplementing schedule logic.
type TrackerService struct {
	tasks       TaskStore
	completions CompletionStore
	windowDays  int
	nowFunc     func() time.Time
}

func NewTrackerService(tasks TaskStore, completions CompletionStore, windowDays int) *TrackerService {
	if windowDays <= 0 {
		windowDays = stats.DefaultWindowDays
	}
	return &TrackerService{
		tasks:       tasks,
		completions: completions,
		windowDays:  windowDays,
		nowFunc:     time.Now,
	}
}

// IsTaskDueToday answers the schedule question for external callers such as
// the daily digest job.
func (s *TrackerService) IsTaskDueToday(task *model.RecurringTask) bool {
	return task.Rule().IsDueOn(s.nowFunc())
}

// IsTaskCompletedToday reports whether a completion record exists for today.
func (s *TrackerService) IsTaskCompletedToday(ctx context.Context, taskID uint) (bool, error) {
	return s.completions.IsCompletedOn(ctx, taskID, s.nowFunc())
}

// ToggleCompletion flips today's completion state for a task owned by the
// user. The ownership check runs first so one user can never touch another's
// records. Returns the resulting completed state.
func (s *TrackerService) ToggleCompletion(ctx context.Context, user *model.User, taskID uint) (bool, error) {
	task, err := s.tasks.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return false, err
	}
	return s.completions.Toggle(ctx, task.ID, s.nowFunc())
}

// ToggleCompletionOn is ToggleCompletion for an arbitrary calendar day,
// used to backfill or correct past records.
func (s *TrackerService) ToggleCompletionOn(ctx context.Context, user *model.User, taskID uint, day time.Time) (bool, error) {
	task, err := s.tasks.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return false, err
	}
	return s.completions.Toggle(ctx, task.ID, day)
}

// TaskStats computes streaks and success rate for the task over a trailing
// window ending today. windowDays <= 0 falls back to the service default.
// The completion set is loaded in a single query so the computation sees one
// consistent snapshot.
func (s *TrackerService) TaskStats(ctx context.Context, task *model.RecurringTask, windowDays int) (stats.Stats, error) {
	if windowDays <= 0 {
		windowDays = s.windowDays
	}
	today := recurrence.DateOf(s.nowFunc())
	start := today.AddDate(0, 0, -(stats.DefaultLookbackDays - 1))

	dates, err := s.completions.ListInWindow(ctx, task.ID, start, today)
	if err != nil {
		return stats.Stats{}, err
	}
	return stats.Compute(task.Rule(), task.CreatedAt, stats.NewDateSet(dates), today, windowDays, stats.DefaultLookbackDays), nil
}

// CompletionHistory returns the last `days` days for the task, oldest first,
// exactly `days` entries. days <= 0 falls back to the default span.
func (s *TrackerService) CompletionHistory(ctx context.Context, user *model.User, taskID uint, days int) ([]stats.HistoryEntry, error) {
	if days <= 0 {
		days = stats.DefaultHistoryDays
	}
	task, err := s.tasks.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}

	today := recurrence.DateOf(s.nowFunc())
	start := today.AddDate(0, 0, -(days - 1))

	dates, err := s.completions.ListInWindow(ctx, task.ID, start, today)
	if err != nil {
		return nil, err
	}
	return stats.History(stats.NewDateSet(dates), today, days), nil
}
