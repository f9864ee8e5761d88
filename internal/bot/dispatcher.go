package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"habitnavi/internal/cache"
	"habitnavi/internal/featureflags"
	"habitnavi/internal/line"
	"habitnavi/internal/middleware"
	"habitnavi/internal/models"
	"habitnavi/internal/observability"
)

// UserStore resolves platform user IDs to persistent users.
type UserStore interface {
	// GetOrCreate returns the user for lineUserID, creating the row on
	// first contact. profile is optional and only applied on creation.
	GetOrCreate(ctx context.Context, lineUserID string, profile *line.Profile) (*models.User, error)
	// RefreshProfile applies freshly fetched platform attributes to an
	// existing user.
	RefreshProfile(ctx context.Context, user *models.User, profile *line.Profile) error
}

// HabitStore persists habit sets and completion logs.
type HabitStore interface {
	GetHabits(ctx context.Context, userID string) ([]string, error)
	SetHabits(ctx context.Context, userID string, names []string) error
	LogCompletion(ctx context.Context, userID, name string) (*models.HabitLog, error)
	GetTodayCompletions(ctx context.Context, userID string) ([]models.HabitLog, error)
	GetStats(ctx context.Context, userID string, windowDays int) ([]models.HabitStat, error)
}

// Messenger sends replies and fetches profiles on the messaging platform.
type Messenger interface {
	Reply(ctx context.Context, replyToken string, messages ...line.TextMessage) error
	Profile(ctx context.Context, lineUserID string) (*line.Profile, error)
}

const statsFlag = "stats"

// errEventIgnored marks an event that is acknowledged but deliberately not
// handled. It never reaches the caller of HandleEvents.
var errEventIgnored = errors.New("event ignored")

// Dispatcher routes webhook events to handlers. One dispatcher serves all
// users; all per-request state travels through ctx and arguments.
type Dispatcher struct {
	users      UserStore
	habits     HabitStore
	messenger  Messenger
	replies    *Builder
	clock      Clock
	flags      *featureflags.Manager
	windowDays int
}

// NewDispatcher wires a Dispatcher from its dependencies. flags may be nil,
// which leaves every gated feature disabled.
func NewDispatcher(users UserStore, habits HabitStore, messenger Messenger, replies *Builder, clock Clock, flags *featureflags.Manager, windowDays int) *Dispatcher {
	return &Dispatcher{
		users:      users,
		habits:     habits,
		messenger:  messenger,
		replies:    replies,
		clock:      clock,
		flags:      flags,
		windowDays: windowDays,
	}
}

// HandleEvents processes a webhook delivery. Events run concurrently and
// independently: one failing event never blocks or fails the others. The
// returned slice holds one entry per failed event, for logging only; the
// webhook response has already been decided by the time this is called.
func (d *Dispatcher) HandleEvents(ctx context.Context, events []line.Event) []error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := range events {
		wg.Add(1)
		go func(ev line.Event) {
			defer wg.Done()
			if err := d.handleEvent(ctx, ev); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(events[i])
	}
	wg.Wait()
	return errs
}

func (d *Dispatcher) handleEvent(ctx context.Context, ev line.Event) error {
	// The platform redelivers events it believes were lost. The dedupe key
	// keeps a redelivered completion from being logged twice.
	if !cache.FirstDelivery(ctx, ev.WebhookEventID) {
		observability.WebhookEventsTotal.WithLabelValues(ev.Type, "duplicate").Inc()
		return nil
	}

	uid := ev.UserID()
	if uid == "" {
		middleware.Logger.WarnContext(ctx, "event without user source dropped", "event_type", ev.Type)
		observability.WebhookEventsTotal.WithLabelValues(ev.Type, "dropped").Inc()
		return nil
	}
	ctx = middleware.WithLineUserID(ctx, uid)

	var err error
	switch ev.Type {
	case line.EventTypeMessage:
		err = d.handleMessage(ctx, ev)
	case line.EventTypeFollow:
		err = d.handleFollow(ctx, ev)
	default:
		// Unfollow, join, postback and friends: acknowledged, not handled.
		err = errEventIgnored
	}

	if errors.Is(err, errEventIgnored) {
		observability.WebhookEventsTotal.WithLabelValues(ev.Type, "ignored").Inc()
		return nil
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
		middleware.Logger.ErrorContext(ctx, "event handling failed", "event_type", ev.Type, "error", err)
	}
	observability.WebhookEventsTotal.WithLabelValues(ev.Type, outcome).Inc()
	return err
}

func (d *Dispatcher) handleMessage(ctx context.Context, ev line.Event) error {
	if ev.Message == nil || ev.Message.Type != line.MessageTypeText {
		return errEventIgnored
	}

	user, err := d.users.GetOrCreate(ctx, ev.UserID(), nil)
	if err != nil {
		d.replyFailure(ctx, ev.ReplyToken)
		return fmt.Errorf("resolve user: %w", err)
	}

	habits, err := d.habits.GetHabits(ctx, user.ID)
	if err != nil {
		d.replyFailure(ctx, ev.ReplyToken)
		return fmt.Errorf("load habits: %w", err)
	}
	if len(habits) == 0 {
		// A user who messaged before following has no stored set yet.
		habits = models.DefaultHabits
	}

	cmd := Classify(ev.Message.Text, habits)
	observability.CommandsTotal.WithLabelValues(cmd.Kind.String()).Inc()

	msg, err := d.execute(ctx, user, cmd, habits)
	if err != nil {
		d.replyFailure(ctx, ev.ReplyToken)
		return err
	}
	return d.reply(ctx, ev.ReplyToken, msg)
}

// execute runs the storage side of a command and builds the reply.
func (d *Dispatcher) execute(ctx context.Context, user *models.User, cmd Command, habits []string) (line.TextMessage, error) {
	now := d.clock.Now()

	switch cmd.Kind {
	case KindConfigure:
		if err := d.habits.SetHabits(ctx, user.ID, cmd.Names); err != nil {
			return line.TextMessage{}, fmt.Errorf("set habits: %w", err)
		}
		return d.replies.Configure(cmd.Names, now), nil

	case KindConfigureInvalid:
		return d.replies.ConfigureInvalid(), nil

	case KindConfigureTooMany:
		return d.replies.ConfigureTooMany(), nil

	case KindShowHabits:
		logs, err := d.habits.GetTodayCompletions(ctx, user.ID)
		if err != nil {
			return line.TextMessage{}, fmt.Errorf("load today completions: %w", err)
		}
		return d.replies.ShowHabits(habits, logs, now), nil

	case KindShowStats:
		if !d.flags.Enabled(statsFlag, user.ID) {
			return d.replies.StatsDisabled(habits, now), nil
		}
		stats, err := d.habits.GetStats(ctx, user.ID, d.windowDays)
		if err != nil {
			return line.TextMessage{}, fmt.Errorf("load stats: %w", err)
		}
		return d.replies.ShowStats(stats, d.windowDays, habits, now), nil

	case KindLogCompletion:
		if _, err := d.habits.LogCompletion(ctx, user.ID, cmd.Habit); err != nil {
			return line.TextMessage{}, fmt.Errorf("log completion: %w", err)
		}
		logs, err := d.habits.GetTodayCompletions(ctx, user.ID)
		if err != nil {
			return line.TextMessage{}, fmt.Errorf("count today completions: %w", err)
		}
		count := 0
		for _, l := range logs {
			if l.Name == cmd.Habit {
				count++
			}
		}
		return d.replies.LogCompletion(cmd.Habit, habits, count, now), nil

	default:
		return d.replies.Echo(cmd.Text, habits, now), nil
	}
}

func (d *Dispatcher) handleFollow(ctx context.Context, ev line.Event) error {
	uid := ev.UserID()

	// Best effort: a missing profile never blocks the welcome.
	profile, err := d.messenger.Profile(ctx, uid)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "profile fetch failed", "error", err)
		profile = nil
	}

	user, err := d.users.GetOrCreate(ctx, uid, profile)
	if err != nil {
		d.replyFailure(ctx, ev.ReplyToken)
		return fmt.Errorf("resolve user: %w", err)
	}

	// Re-following users pick up whatever the platform reports now. Also
	// best effort: a stale display name never blocks the welcome.
	if profile != nil {
		if err := d.users.RefreshProfile(ctx, user, profile); err != nil {
			middleware.Logger.WarnContext(ctx, "profile refresh failed", "error", err)
		}
	}

	habits, err := d.habits.GetHabits(ctx, user.ID)
	if err != nil {
		d.replyFailure(ctx, ev.ReplyToken)
		return fmt.Errorf("load habits: %w", err)
	}
	if len(habits) == 0 {
		// First follow installs the defaults. A re-follow keeps whatever
		// the user configured before unfollowing.
		if err := d.habits.SetHabits(ctx, user.ID, models.DefaultHabits); err != nil {
			d.replyFailure(ctx, ev.ReplyToken)
			return fmt.Errorf("install default habits: %w", err)
		}
		habits = models.DefaultHabits
	}

	return d.reply(ctx, ev.ReplyToken, d.replies.Welcome(habits, d.clock.Now()))
}

func (d *Dispatcher) reply(ctx context.Context, replyToken string, msg line.TextMessage) error {
	if err := d.messenger.Reply(ctx, replyToken, msg); err != nil {
		observability.ReplyFailures.Inc()
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// replyFailure sends the generic error message. The original error is what
// matters; a failed failure-reply is only logged.
func (d *Dispatcher) replyFailure(ctx context.Context, replyToken string) {
	if err := d.messenger.Reply(ctx, replyToken, d.replies.Failure()); err != nil {
		observability.ReplyFailures.Inc()
		middleware.Logger.WarnContext(ctx, "failure reply not delivered", "error", err)
	}
}
