package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"habit-tracker/internal/model"
)

// ReminderService builds human-readable digests for daily notifications.
type ReminderService struct {
	tasks   TaskStore
	tracker *TrackerService
}

func NewReminderService(tasks TaskStore, tracker *TrackerService) *ReminderService {
	return &ReminderService{tasks: tasks, tracker: tracker}
}

// DailyDigest renders which of the user's habits are due on the given day,
// with completion state and current streak per habit. Habits not due today
// are listed in a short footer by their next relevance only.
func (s *ReminderService) DailyDigest(ctx context.Context, user model.User, now time.Time) (string, error) {
	tasks, err := s.tasks.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}

	var due, rest []model.RecurringTask
	for _, task := range tasks {
		if task.Rule().IsDueOn(now) {
			due = append(due, task)
		} else {
			rest = append(rest, task)
		}
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily habit digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("Mon, 02 Jan 2006")))

	builder.WriteString("🔥 <b>Due today</b>\n")
	if len(due) == 0 {
		builder.WriteString("— nothing scheduled for today\n")
	} else {
		for _, task := range due {
			line, err := s.formatDueTask(ctx, task)
			if err != nil {
				return "", err
			}
			builder.WriteString(line)
		}
	}

	if len(rest) > 0 {
		builder.WriteString("\n💤 <b>Not due today</b>\n")
		for _, task := range rest {
			builder.WriteString(fmt.Sprintf("· %s <i>(%s)</i>\n",
				html.EscapeString(strings.TrimSpace(task.Title)), task.Rule().Describe()))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

func (s *ReminderService) formatDueTask(ctx context.Context, task model.RecurringTask) (string, error) {
	done, err := s.tracker.IsTaskCompletedToday(ctx, task.ID)
	if err != nil {
		return "", err
	}
	st, err := s.tracker.TaskStats(ctx, &task, 0)
	if err != nil {
		return "", err
	}

	icon := "⬜"
	if done {
		icon = "✅"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(task.Title))))
	if st.CurrentStreak > 0 {
		sb.WriteString(fmt.Sprintf(" — 🔥 %d day streak", st.CurrentStreak))
	}
	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(task.Description))))
	}
	sb.WriteByte('\n')
	return sb.String(), nil
}
