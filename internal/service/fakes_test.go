package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"habit-tracker/internal/model"
	"habit-tracker/internal/recurrence"
)

// fakeTaskStore keeps tasks in a map, keyed by id.
type fakeTaskStore struct {
	tasks  map[uint]model.RecurringTask
	nextID uint
	err    error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uint]model.RecurringTask), nextID: 1}
}

func (f *fakeTaskStore) Create(_ context.Context, task *model.RecurringTask) error {
	if f.err != nil {
		return f.err
	}
	task.ID = f.nextID
	f.nextID++
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeTaskStore) ListByUser(_ context.Context, userID uint) ([]model.RecurringTask, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.RecurringTask
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTaskStore) FindByID(_ context.Context, userID, taskID uint) (*model.RecurringTask, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (f *fakeTaskStore) Update(_ context.Context, userID, taskID uint, fields map[string]interface{}) error {
	if f.err != nil {
		return f.err
	}
	t, ok := f.tasks[taskID]
	if !ok || t.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["frequency"].(string); ok {
		t.Frequency = v
	}
	if v, ok := fields["day_of_week"].(*int); ok {
		t.DayOfWeek = v
	}
	if v, ok := fields["day_of_month"].(*int); ok {
		t.DayOfMonth = v
	}
	f.tasks[taskID] = t
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, userID, taskID uint) error {
	if f.err != nil {
		return f.err
	}
	t, ok := f.tasks[taskID]
	if !ok || t.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(f.tasks, taskID)
	return nil
}

// fakeCompletionStore keys completion state by task id and YYYY-MM-DD.
type fakeCompletionStore struct {
	done map[uint]map[string]bool
	err  error
}

func newFakeCompletionStore() *fakeCompletionStore {
	return &fakeCompletionStore{done: make(map[uint]map[string]bool)}
}

func (f *fakeCompletionStore) key(day time.Time) string {
	return recurrence.DateOf(day).Format(model.DateLayout)
}

func (f *fakeCompletionStore) mark(taskID uint, day time.Time) {
	if f.done[taskID] == nil {
		f.done[taskID] = make(map[string]bool)
	}
	f.done[taskID][f.key(day)] = true
}

func (f *fakeCompletionStore) IsCompletedOn(_ context.Context, taskID uint, day time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.done[taskID][f.key(day)], nil
}

func (f *fakeCompletionStore) Toggle(_ context.Context, taskID uint, day time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	key := f.key(day)
	if f.done[taskID][key] {
		delete(f.done[taskID], key)
		return false, nil
	}
	f.mark(taskID, day)
	return true, nil
}

func (f *fakeCompletionStore) ListInWindow(_ context.Context, taskID uint, start, end time.Time) ([]time.Time, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []time.Time
	for key, ok := range f.done[taskID] {
		if !ok {
			continue
		}
		d, err := time.Parse(model.DateLayout, key)
		if err != nil {
			continue
		}
		if !d.Before(recurrence.DateOf(start)) && !d.After(recurrence.DateOf(end)) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}
