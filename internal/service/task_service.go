package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"habit-tracker/internal/model"
	"habit-tracker/internal/recurrence"
)

// TaskInput carries data for creating a recurring task.
type TaskInput struct {
	Title       string `validate:"required,max=120"`
	Description string `validate:"max=500"`
	Frequency   string `validate:"required,oneof=daily weekly monthly"`
	DayOfWeek   *int
	DayOfMonth  *int
}

// Rule builds the recurrence rule described by the input.
func (in TaskInput) Rule() recurrence.Rule {
	return recurrence.Rule{
		Frequency:  recurrence.Frequency(in.Frequency),
		DayOfWeek:  in.DayOfWeek,
		DayOfMonth: in.DayOfMonth,
	}
}

// TaskStore is the persistence boundary for recurring tasks.
type TaskStore interface {
	Create(ctx context.Context, task *model.RecurringTask) error
	ListByUser(ctx context.Context, userID uint) ([]model.RecurringTask, error)
	FindByID(ctx context.Context, userID, taskID uint) (*model.RecurringTask, error)
	Update(ctx context.Context, userID, taskID uint, fields map[string]interface{}) error
	Delete(ctx context.Context, userID, taskID uint) error
}

// TaskService wraps task CRUD with schedule validation. An input that
// violates the frequency/day invariant is rejected before anything is
// persisted.
type TaskService struct {
	tasks    TaskStore
	validate *validator.Validate
}

func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{
		tasks:    tasks,
		validate: validator.New(),
	}
}

func (s *TaskService) CreateTask(ctx context.Context, user *model.User, input TaskInput) (*model.RecurringTask, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}
	rule := input.Rule()
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schedule: %w", err)
	}

	task := model.RecurringTask{
		UserID:      user.ID,
		Title:       input.Title,
		Description: input.Description,
		Frequency:   input.Frequency,
		DayOfWeek:   rule.DayOfWeek,
		DayOfMonth:  rule.DayOfMonth,
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, user *model.User) ([]model.RecurringTask, error) {
	return s.tasks.ListByUser(ctx, user.ID)
}

func (s *TaskService) GetTask(ctx context.Context, user *model.User, taskID uint) (*model.RecurringTask, error) {
	return s.tasks.FindByID(ctx, user.ID, taskID)
}

// UpdateSchedule swaps a task's recurrence rule, validating the new rule first.
func (s *TaskService) UpdateSchedule(ctx context.Context, user *model.User, taskID uint, rule recurrence.Rule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	fields := map[string]interface{}{
		"frequency":    string(rule.Frequency),
		"day_of_week":  rule.DayOfWeek,
		"day_of_month": rule.DayOfMonth,
	}
	return s.tasks.Update(ctx, user.ID, taskID, fields)
}

// DeleteTask removes a task together with its completion history.
func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID uint) error {
	return s.tasks.Delete(ctx, user.ID, taskID)
}
