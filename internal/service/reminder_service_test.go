package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-tracker/internal/model"
)

func TestDailyDigest(t *testing.T) {
	tasks := newFakeTaskStore()
	completions := newFakeCompletionStore()
	tracker := newTestTracker(tasks, completions)
	svc := NewReminderService(tasks, tracker)
	ctx := context.Background()
	user := model.User{ID: 1}

	daily := addTask(t, tasks, 1, "daily", 100)
	daily.Title = "morning run"
	tasks.tasks[daily.ID] = *daily

	friday := int(time.Friday)
	weekly := addTask(t, tasks, 1, "weekly", 100)
	weekly.Title = "weekly review"
	weekly.DayOfWeek = &friday // testToday is a Thursday, so not due
	tasks.tasks[weekly.ID] = *weekly

	// Three-day streak on the daily habit, including today.
	for i := 0; i < 3; i++ {
		completions.mark(daily.ID, testToday.AddDate(0, 0, -i))
	}

	digest, err := svc.DailyDigest(ctx, user, testToday)
	require.NoError(t, err)

	assert.Contains(t, digest, "Daily habit digest")
	assert.Contains(t, digest, "✅ morning run")
	assert.Contains(t, digest, "3 day streak")
	assert.Contains(t, digest, "Not due today")
	assert.Contains(t, digest, "weekly review")
	assert.Contains(t, digest, "weekly on Friday")
}

func TestDailyDigestNothingDue(t *testing.T) {
	tasks := newFakeTaskStore()
	tracker := newTestTracker(tasks, newFakeCompletionStore())
	svc := NewReminderService(tasks, tracker)

	digest, err := svc.DailyDigest(context.Background(), model.User{ID: 1}, testToday)
	require.NoError(t, err)
	assert.Contains(t, digest, "nothing scheduled for today")
}

func TestDailyDigestIncompleteDueTask(t *testing.T) {
	tasks := newFakeTaskStore()
	tracker := newTestTracker(tasks, newFakeCompletionStore())
	svc := NewReminderService(tasks, tracker)

	task := addTask(t, tasks, 1, "daily", 100)
	task.Title = "write journal"
	tasks.tasks[task.ID] = *task

	digest, err := svc.DailyDigest(context.Background(), model.User{ID: 1}, testToday)
	require.NoError(t, err)
	assert.Contains(t, digest, "⬜ write journal")
	assert.False(t, strings.Contains(digest, "streak"), "no streak line with empty log")
}

func TestDailyDigestEscapesHTML(t *testing.T) {
	tasks := newFakeTaskStore()
	tracker := newTestTracker(tasks, newFakeCompletionStore())
	svc := NewReminderService(tasks, tracker)

	task := addTask(t, tasks, 1, "daily", 100)
	task.Title = "read <b>books</b>"
	tasks.tasks[task.ID] = *task

	digest, err := svc.DailyDigest(context.Background(), model.User{ID: 1}, testToday)
	require.NoError(t, err)
	assert.Contains(t, digest, "read &lt;b&gt;books&lt;/b&gt;")
}

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "08:00", want: "0 0 8 * * *"},
		{in: "23:59", want: "0 59 23 * * *"},
		{in: "8", wantErr: true},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "ab:cd", wantErr: true},
	}
	for _, tt := range tests {
		got, err := buildDailySpec(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
