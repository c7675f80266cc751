package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zapponejosh/devotions-api/internal/calendar"
	"github.com/zapponejosh/devotions-api/internal/database"
	"github.com/zapponejosh/devotions-api/internal/metrics"
)

// Store is the persistence surface the dispatcher needs.
type Store interface {
	DueReminders(ctx context.Context, now time.Time) ([]database.Reminder, error)
	UpdateReminderNextRun(ctx context.Context, id uuid.UUID, next time.Time) error
	GetUser(ctx context.Context, id string) (*database.User, error)
}

// Notifier delivers one reminder over one method (push, sms, email).
type Notifier interface {
	Send(ctx context.Context, method string, user *database.User, r database.Reminder) error
}

// Dispatcher sweeps due reminders, delivers them, and reschedules each for
// its next local wall-clock occurrence.
type Dispatcher struct {
	store    Store
	notifier Notifier
	sink     metrics.Sink
	logger   *slog.Logger

	sendTimeout time.Duration
	now         func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithSendTimeout bounds each delivery attempt.
func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.sendTimeout = timeout }
}

// NewDispatcher wires a dispatcher. A nil sink disables metrics.
func NewDispatcher(store Store, notifier Notifier, sink metrics.Sink, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:       store,
		notifier:    notifier,
		sink:        sink,
		logger:      logger,
		sendTimeout: 10 * time.Second,
		now:         time.Now,
	}
	if d.sink == nil {
		d.sink = metrics.Noop{}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Sweep processes every reminder due at the current instant. One failing
// reminder never aborts the batch; its error is logged and counted, and the
// reminder is still rescheduled so it does not wedge the due queue.
func (d *Dispatcher) Sweep(ctx context.Context) error {
	start := d.now()
	d.sink.SweepStarted()

	due, err := d.store.DueReminders(ctx, start)
	if err != nil {
		return err
	}
	d.logger.Info("reminder sweep", "due", len(due))

	for _, r := range due {
		d.process(ctx, r)
	}

	d.sink.SweepCompleted(d.now().Sub(start).Seconds(), len(due))
	return nil
}

func (d *Dispatcher) process(ctx context.Context, r database.Reminder) {
	log := d.logger.With("reminder_id", r.ID.String(), "user_id", r.UserID, "devotion", r.Devotion)

	if d.shouldDeliver(r) {
		user, err := d.store.GetUser(ctx, r.UserID)
		if err != nil {
			log.Error("loading reminder owner", "error", err)
			d.sink.ReminderSkipped("user_lookup")
		} else {
			for _, method := range r.Methods {
				d.send(ctx, log, method, user, r)
			}
		}
	} else {
		log.Info("reminder outside its season, skipping delivery")
		d.sink.ReminderSkipped("out_of_season")
	}

	// Reschedule from a fresh now rather than the stored instant, so a
	// delayed sweep cannot queue a second near-immediate fire.
	next, err := NextRun(r.TimeOfDay, r.Timezone, d.now())
	if err != nil {
		log.Error("computing next run", "error", err)
		return
	}
	if err := d.store.UpdateReminderNextRun(ctx, r.ID, next); err != nil {
		log.Error("rescheduling reminder", "error", err)
		return
	}
	log.Info("reminder rescheduled", "next_run", next)
}

func (d *Dispatcher) send(ctx context.Context, log *slog.Logger, method string, user *database.User, r database.Reminder) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := d.notifier.Send(sendCtx, method, user, r); err != nil {
		log.Error("sending reminder", "method", method, "error", err)
		d.sink.ReminderFailed(method)
		return
	}
	d.sink.ReminderSent(method)
}

// shouldDeliver gates seasonal devotions. A lent reminder fires only from
// Ash Wednesday through Easter Sunday, judged on the user's local date.
func (d *Dispatcher) shouldDeliver(r database.Reminder) bool {
	if r.Devotion != "lent" {
		return true
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := d.now().In(loc)
	today := calendar.Midnight(local)
	cy := calendar.NewChurchYear(today.Year())
	return cy.InLent(today)
}
