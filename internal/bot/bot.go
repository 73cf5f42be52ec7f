package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"habit-tracker/internal/config"
	"habit-tracker/internal/model"
	"habit-tracker/internal/repository"
	"habit-tracker/internal/service"
	"habit-tracker/internal/stats"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageFrequency
	stageWeekday
	stageMonthday
)

const (
	cbTogglePrefix = "toggle:"
	cbStatsPrefix  = "stats:"
)

const (
	btnSkip         = "⏭️ Skip"
	btnYes          = "Yes"
	btnNo           = "No"
	btnCancelDialog = "⏪ Cancel"
	btnDaily        = "Every day"
	btnWeekly       = "Weekly"
	btnMonthly      = "Monthly"
	iconDone        = "✅"
	iconPending     = "⬜"
	iconNotDue      = "💤"
	menuLabelNew    = "➕ New habit"
	menuLabelHabits = "📋 Habits"
	menuLabelToday  = "📆 Today"
	menuLabelDigest = "📊 Digest"
	menuLabelHelp   = "ℹ️ Help"
)

var weekdayButtons = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

type pendingDelete struct {
	taskID uint
}

// Bot aggregates the Telegram API with habit services.
type Bot struct {
	api           *tgbotapi.BotAPI
	userRepo      *repository.UserRepository
	taskSvc       *service.TaskService
	trackerSvc    *service.TrackerService
	reminderSvc   *service.ReminderService
	config        *config.Config
	conversations map[int64]*conversationState
	deletions     map[int64]pendingDelete
	mu            sync.Mutex
}

func New(token string, userRepo *repository.UserRepository, taskSvc *service.TaskService, trackerSvc *service.TrackerService, reminderSvc *service.ReminderService, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:           api,
		userRepo:      userRepo,
		taskSvc:       taskSvc,
		trackerSvc:    trackerSvc,
		reminderSvc:   reminderSvc,
		config:        cfg,
		conversations: make(map[int64]*conversationState),
		deletions:     make(map[int64]pendingDelete),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && strings.TrimSpace(msg.Text) == btnCancelDialog {
		b.clearConversation(msg.From.ID)
		b.clearDeletion(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Dialog cancelled. Use /newhabit to start again.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getDeletion(msg.From.ID); ok {
		return b.handleDeleteResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I didn't get that. Use /newhabit to add a habit or /help for the command list.")
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(msg.Text) {
	case menuLabelNew:
		return true, b.startNewHabitConversation(ctx, msg)
	case menuLabelHabits:
		return true, b.handleListHabits(ctx, msg)
	case menuLabelToday:
		return true, b.handleToday(ctx, msg)
	case menuLabelDigest:
		return true, b.handleDigest(ctx, msg)
	case menuLabelHelp:
		return true, b.handleHelp(msg)
	}
	return false, nil
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "newhabit":
		return b.startNewHabitConversation(ctx, msg)
	case "habits":
		return b.handleListHabits(ctx, msg)
	case "today":
		return b.handleToday(ctx, msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "stats":
		return b.handleStats(ctx, msg)
	case "digest":
		return b.handleDigest(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearDeletion(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.upsertUser(ctx, msg)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(
		"Hi, %s! I track your recurring habits and streaks.\n\n"+
			"➕ /newhabit — add a habit\n"+
			"📋 /habits — list habits with today's state\n"+
			"📆 /today — what's due today\n"+
			"✅ /done <id> — toggle today's completion\n"+
			"📊 /stats — streaks and success rate\n\n"+
			"I'll also send a daily digest at %s.",
		html.EscapeString(user.FirstName), b.config.DigestTime)

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyMarkup = mainMenuKeyboard()
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "Commands:\n" +
		"/newhabit — add a recurring habit (daily, weekly or monthly)\n" +
		"/habits — your habits with schedule and today's state\n" +
		"/today — habits due today\n" +
		"/done <id> — toggle today's completion for a habit\n" +
		"/stats [id] — current streak, longest streak, success rate\n" +
		"/digest — today's digest on demand\n" +
		"/delete <id> — remove a habit and its history\n" +
		"/cancel — abort the current dialog"
	return b.sendText(msg.Chat.ID, text)
}

// --- habit creation conversation ---

func (b *Bot) startNewHabitConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.upsertUser(ctx, msg); err != nil {
		return err
	}

	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})

	reply := tgbotapi.NewMessage(msg.Chat.ID, "What habit do you want to track? Send its name.")
	reply.ReplyMarkup = cancelKeyboard()
	_, err := b.api.Send(reply)
	return err
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendText(msg.Chat.ID, "The name can't be empty. Try again.")
		}
		state.input.Title = text
		state.stage = stageDescription
		reply := tgbotapi.NewMessage(msg.Chat.ID, "Add a short description, or skip.")
		reply.ReplyMarkup = skipKeyboard()
		_, err := b.api.Send(reply)
		return err

	case stageDescription:
		if text != btnSkip {
			state.input.Description = text
		}
		state.stage = stageFrequency
		reply := tgbotapi.NewMessage(msg.Chat.ID, "How often should it recur?")
		reply.ReplyMarkup = frequencyKeyboard()
		_, err := b.api.Send(reply)
		return err

	case stageFrequency:
		switch text {
		case btnDaily:
			state.input.Frequency = "daily"
			return b.finishConversation(ctx, msg, state)
		case btnWeekly:
			state.input.Frequency = "weekly"
			state.stage = stageWeekday
			reply := tgbotapi.NewMessage(msg.Chat.ID, "Which day of the week?")
			reply.ReplyMarkup = weekdayKeyboard()
			_, err := b.api.Send(reply)
			return err
		case btnMonthly:
			state.input.Frequency = "monthly"
			state.stage = stageMonthday
			reply := tgbotapi.NewMessage(msg.Chat.ID, "Which day of the month? Send a number 1-31.\nFor short months the habit lands on the last day.")
			reply.ReplyMarkup = cancelKeyboard()
			_, err := b.api.Send(reply)
			return err
		default:
			return b.sendText(msg.Chat.ID, "Pick one of the buttons: Every day, Weekly or Monthly.")
		}

	case stageWeekday:
		for i, name := range weekdayButtons {
			if text == name {
				day := i
				state.input.DayOfWeek = &day
				return b.finishConversation(ctx, msg, state)
			}
		}
		return b.sendText(msg.Chat.ID, "Pick a weekday from the keyboard.")

	case stageMonthday:
		day, err := strconv.Atoi(text)
		if err != nil || day < 1 || day > 31 {
			return b.sendText(msg.Chat.ID, "Send a number between 1 and 31.")
		}
		state.input.DayOfMonth = &day
		return b.finishConversation(ctx, msg, state)
	}

	return nil
}

func (b *Bot) finishConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	defer b.clearConversation(msg.From.ID)

	user, err := b.upsertUser(ctx, msg)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.CreateTask(ctx, user, state.input)
	if err != nil {
		log.Printf("create habit for %d: %v", msg.From.ID, err)
		return b.sendTextWithMenu(msg.Chat.ID, "Couldn't save the habit. Nothing was changed — try /newhabit again.")
	}

	text := fmt.Sprintf("Saved <b>%s</b> (%s). Use /today to see it when it's due.",
		html.EscapeString(task.Title), task.Rule().Describe())
	return b.sendTextWithMenu(msg.Chat.ID, text)
}

// --- listing and completion ---

func (b *Bot) handleListHabits(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.upsertUser(ctx, msg)
	if err != nil {
		return err
	}

	tasks, err := b.taskSvc.ListTasks(ctx, user)
	if err != nil {
		return fmt.Errorf("list habits: %w", err)
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "No habits yet. Add one with /newhabit.")
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Your habits</b>\n\n")
	for _, task := range tasks {
		icon := iconNotDue
		if b.trackerSvc.IsTaskDueToday(&task) {
			done, err := b.trackerSvc.IsTaskCompletedToday(ctx, task.ID)
			if err != nil {
				return fmt.Errorf("completion state: %w", err)
			}
			icon = iconPending
			if done {
				icon = iconDone
			}
		}
		builder.WriteString(fmt.Sprintf("%s <b>#%d</b> %s <i>(%s)</i>\n",
			icon, task.ID, html.EscapeString(task.Title), task.Rule().Describe()))
		if task.Description != "" {
			builder.WriteString(fmt.Sprintf("   📝 %s\n", html.EscapeString(task.Description)))
		}
	}
	builder.WriteString("\n✅ = done today, ⬜ = due today, 💤 = not due today")

	reply := tgbotapi.NewMessage(msg.Chat.ID, builder.String())
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = habitsInlineKeyboard(tasks)
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.upsertUser(ctx, msg)
	if err != nil {
		return err
	}

	tasks, err := b.taskSvc.ListTasks(ctx, user)
	if err != nil {
		return fmt.Errorf("list habits: %w", err)
	}

	var due []model.RecurringTask
	for _, task := range tasks {
		if b.trackerSvc.IsTaskDueToday(&task) {
			due = append(due, task)
		}
	}
	if len(due) == 0 {
		return b.sendText(msg.Chat.ID, "Nothing is due today. Enjoy the day off! 🎉")
	}

	var builder strings.Builder
	builder.WriteString("📆 <b>Due today</b>\n\n")
	for _, task := range due {
		done, err := b.trackerSvc.IsTaskCompletedToday(ctx, task.ID)
		if err != nil {
			return fmt.Errorf("completion state: %w", err)
		}
		icon := iconPending
		if done {
			icon = iconDone
		}
		builder.WriteString(fmt.Sprintf("%s <b>#%d</b> %s\n", icon, task.ID, html.EscapeString(task.Title)))
	}
	builder.WriteString("\nTap a button to toggle completion.")

	reply := tgbotapi.NewMessage(msg.Chat.ID, builder.String())
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = habitsInlineKeyboard(due)
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.upsertUser(ctx, msg)
	if err != nil {
		return err
	}

	taskID, err := parseTaskID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /done <habit id>. Find ids in /habits.")
	}

	return b.toggleAndReport(ctx, msg.Chat.ID, user, taskID)
}

func (b *Bot) toggleAndReport(ctx context.Context, chatID int64, user *model.User, taskID uint) error {
	task, err := b.taskSvc.GetTask(ctx, user, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "No habit with that id.")
		}
		return fmt.Errorf("find habit: %w", err)
	}

	done, err := b.trackerSvc.ToggleCompletion(ctx, user, task.ID)
	if err != nil {
		return fmt.Errorf("toggle completion: %w", err)
	}

	if !done {
		return b.sendHTML(chatID, fmt.Sprintf("↩️ Unmarked <b>%s</b> for today.", html.EscapeString(task.Title)))
	}

	st, err := b.trackerSvc.TaskStats(ctx, task, 0)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	text := fmt.Sprintf("✅ <b>%s</b> done for today!", html.EscapeString(task.Title))
	if st.CurrentStreak > 1 {
		text += fmt.Sprintf(" 🔥 %d days in a row.", st.CurrentStreak)
	}
	return b.sendHTML(chatID, text)
}

// --- stats ---

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.upsertUser(ctx, msg)
	if err != nil {
		return err
	}

	args := strings.TrimSpace(msg.CommandArguments())
	if args != "" {
		taskID, err := parseTaskID(args)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Usage: /stats or /stats <habit id>.")
		}
		task, err := b.taskSvc.GetTask(ctx, user, taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return b.sendText(msg.Chat.ID, "No habit with that id.")
			}
			return fmt.Errorf("find habit: %w", err)
		}
		text, err := b.formatStats(ctx, user, task)
		if err != nil {
			return err
		}
		return b.sendHTML(msg.Chat.ID, text)
	}

	tasks, err := b.taskSvc.ListTasks(ctx, user)
	if err != nil {
		return fmt.Errorf("list habits: %w", err)
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "No habits yet. Add one with /newhabit.")
	}

	var builder strings.Builder
	builder.WriteString("📊 <b>Habit stats</b>\n\n")
	for i := range tasks {
		text, err := b.formatStats(ctx, user, &tasks[i])
		if err != nil {
			return err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return b.sendHTML(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) formatStats(ctx context.Context, user *model.User, task *model.RecurringTask) (string, error) {
	st, err := b.trackerSvc.TaskStats(ctx, task, 0)
	if err != nil {
		return "", fmt.Errorf("stats: %w", err)
	}
	history, err := b.trackerSvc.CompletionHistory(ctx, user, task.ID, stats.DefaultHistoryDays)
	if err != nil {
		return "", fmt.Errorf("history: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>#%d %s</b> <i>(%s)</i>\n", task.ID, html.EscapeString(task.Title), task.Rule().Describe()))
	sb.WriteString(fmt.Sprintf("🔥 streak: %d · 🏆 best: %d · 🎯 %d%% over %d days\n",
		st.CurrentStreak, st.LongestStreak, st.SuccessRate, stats.DefaultWindowDays))
	sb.WriteString(fmt.Sprintf("last %d days: %s\n", len(history), historyLine(history)))
	return sb.String(), nil
}

// historyLine renders a history as a left-to-right sparkline ending today.
func historyLine(entries []stats.HistoryEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		if e.Completed {
			sb.WriteString(iconDone)
		} else {
			sb.WriteString(iconPending)
		}
	}
	return sb.String()
}

// --- digest ---

func (b *Bot) handleDigest(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.upsertUser(ctx, msg)
	if err != nil {
		return err
	}

	digest, err := b.reminderSvc.DailyDigest(ctx, *user, time.Now())
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	return b.sendHTML(msg.Chat.ID, digest)
}

// SendDailyDigests pushes the digest to every known user. Called by the
// scheduler; one failing user does not block the rest.
func (b *Bot) SendDailyDigests(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	now := time.Now()
	for _, user := range users {
		digest, err := b.reminderSvc.DailyDigest(ctx, user, now)
		if err != nil {
			log.Printf("digest for %d: %v", user.TelegramID, err)
			continue
		}
		if err := b.sendHTML(user.TelegramID, digest); err != nil {
			log.Printf("send digest to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

// --- deletion ---

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.upsertUser(ctx, msg)
	if err != nil {
		return err
	}

	taskID, err := parseTaskID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /delete <habit id>. Find ids in /habits.")
	}

	task, err := b.taskSvc.GetTask(ctx, user, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(msg.Chat.ID, "No habit with that id.")
		}
		return fmt.Errorf("find habit: %w", err)
	}

	b.setDeletion(msg.From.ID, pendingDelete{taskID: task.ID})

	reply := tgbotapi.NewMessage(msg.Chat.ID,
		fmt.Sprintf("Delete <b>%s</b> and its whole completion history?", html.EscapeString(task.Title)))
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = yesNoKeyboard()
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleDeleteResponse(ctx context.Context, msg *tgbotapi.Message, pending pendingDelete) error {
	defer b.clearDeletion(msg.From.ID)

	if strings.TrimSpace(msg.Text) != btnYes {
		return b.sendTextWithMenu(msg.Chat.ID, "Kept it. Nothing was deleted.")
	}

	user, err := b.upsertUser(ctx, msg)
	if err != nil {
		return err
	}

	if err := b.taskSvc.DeleteTask(ctx, user, pending.taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendTextWithMenu(msg.Chat.ID, "That habit is already gone.")
		}
		return fmt.Errorf("delete habit: %w", err)
	}
	return b.sendTextWithMenu(msg.Chat.ID, "Deleted, history included.")
}

// --- callbacks ---

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil {
		return nil
	}
	// Always answer to stop the client spinner.
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			log.Printf("answer callback: %v", err)
		}
	}()

	user, err := b.userRepo.FindByTelegramID(ctx, cb.From.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(cb.Message.Chat.ID, "Run /start first.")
		}
		return fmt.Errorf("find user: %w", err)
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		taskID, err := parseTaskID(strings.TrimPrefix(data, cbTogglePrefix))
		if err != nil {
			return nil
		}
		return b.toggleAndReport(ctx, cb.Message.Chat.ID, user, taskID)

	case strings.HasPrefix(data, cbStatsPrefix):
		taskID, err := parseTaskID(strings.TrimPrefix(data, cbStatsPrefix))
		if err != nil {
			return nil
		}
		task, err := b.taskSvc.GetTask(ctx, user, taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return b.sendText(cb.Message.Chat.ID, "That habit is gone.")
			}
			return fmt.Errorf("find habit: %w", err)
		}
		text, err := b.formatStats(ctx, user, task)
		if err != nil {
			return err
		}
		return b.sendHTML(cb.Message.Chat.ID, text)
	}

	return nil
}

// --- helpers ---

func (b *Bot) upsertUser(ctx context.Context, msg *tgbotapi.Message) (*model.User, error) {
	from := msg.From
	user, err := b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return user, nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) sendHTML(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithMenu(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func parseTaskID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid habit id %q", raw)
	}
	return uint(id), nil
}

// --- conversation state ---

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func (b *Bot) setDeletion(userID int64, pending pendingDelete) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletions[userID] = pending
}

func (b *Bot) getDeletion(userID int64) (pendingDelete, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pending, ok := b.deletions[userID]
	return pending, ok
}

func (b *Bot) clearDeletion(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.deletions, userID)
}

// --- keyboards ---

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNew),
			tgbotapi.NewKeyboardButton(menuLabelHabits),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelToday),
			tgbotapi.NewKeyboardButton(menuLabelDigest),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func frequencyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnDaily),
			tgbotapi.NewKeyboardButton(btnWeekly),
			tgbotapi.NewKeyboardButton(btnMonthly),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func weekdayKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, 3)
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(weekdayButtons[1]),
		tgbotapi.NewKeyboardButton(weekdayButtons[2]),
		tgbotapi.NewKeyboardButton(weekdayButtons[3]),
		tgbotapi.NewKeyboardButton(weekdayButtons[4]),
	))
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(weekdayButtons[5]),
		tgbotapi.NewKeyboardButton(weekdayButtons[6]),
		tgbotapi.NewKeyboardButton(weekdayButtons[0]),
	))
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func yesNoKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnYes),
			tgbotapi.NewKeyboardButton(btnNo),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func habitsInlineKeyboard(tasks []model.RecurringTask) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks))
	for _, task := range tasks {
		label := task.Title
		if runes := []rune(label); len(runes) > 24 {
			label = string(runes[:24]) + "…"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✔ "+label, cbTogglePrefix+strconv.FormatUint(uint64(task.ID), 10)),
			tgbotapi.NewInlineKeyboardButtonData("📊", cbStatsPrefix+strconv.FormatUint(uint64(task.ID), 10)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
