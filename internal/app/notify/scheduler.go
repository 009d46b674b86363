// internal/app/notify/scheduler.go

// Package notify computes when event participants should be reminded,
// records those decisions durably and idempotently, and delivers due
// reminders through the mailer.
package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	eventstore "github.com/nsu/musclub/internal/app/store/events"
	userstore "github.com/nsu/musclub/internal/app/store/users"
	"github.com/nsu/musclub/internal/app/system/mailer"
	"github.com/nsu/musclub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReminderLead is how long before an event's start time its reminder fires.
const ReminderLead = 24 * time.Hour

// pastReschedule is the grace applied when the computed send time has
// already passed: the reminder still goes out, just as soon as practicable.
const pastReschedule = time.Minute

var (
	// ErrEventNotFound is returned when the event to schedule for does not resolve.
	ErrEventNotFound = errors.New("event not found")
	// ErrNoStartTime is returned when the event has no start time to anchor the reminder.
	ErrNoStartTime = errors.New("event start time is required to schedule reminders")
)

// EventStore resolves the event a reminder batch is anchored to.
type EventStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error)
}

// UserStore resolves reminder recipients.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// MemberStore lists the participants of an event.
type MemberStore interface {
	ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventMember, error)
}

// NotificationStore persists reminder rows and their status transitions.
type NotificationStore interface {
	Create(ctx context.Context, n models.EventNotification) (models.EventNotification, error)
	ExistsPending(ctx context.Context, eventID, userID primitive.ObjectID, sendAt time.Time) (bool, error)
	DueBefore(ctx context.Context, now time.Time) ([]models.EventNotification, error)
	MarkSent(ctx context.Context, id primitive.ObjectID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id primitive.ObjectID) error
}

// Sender delivers one rendered message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ScheduleResult reports what one ScheduleReminders call did.
type ScheduleResult struct {
	Created          int `json:"created"`
	SkippedNoEmail   int `json:"skipped_no_email"`
	SkippedDuplicate int `json:"skipped_duplicate"`
}

// Scheduler owns reminder creation and the due-notification sweep.
//
// One process runs one Scheduler; the sweep re-derives its work from the
// notification store on every run, so a second process would at worst
// double-send a due reminder, never corrupt a row.
type Scheduler struct {
	events        EventStore
	users         UserStore
	members       MemberStore
	notifications NotificationStore
	sender        Sender
	log           *zap.Logger
}

func NewScheduler(
	events EventStore,
	users UserStore,
	members MemberStore,
	notifications NotificationStore,
	sender Sender,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		events:        events,
		users:         users,
		members:       members,
		notifications: notifications,
		sender:        sender,
		log:           logger,
	}
}

// ScheduleReminders books one reminder per participant of the event,
// 24 hours before its start time. A send time already in the past is moved
// to now+1m rather than dropped. Participants without an email address and
// participants who already have a PENDING reminder for the exact same send
// time are skipped and counted; no single participant aborts the batch.
func (s *Scheduler) ScheduleReminders(ctx context.Context, eventID primitive.ObjectID) (ScheduleResult, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventstore.ErrNotFound) {
			return ScheduleResult{}, ErrEventNotFound
		}
		return ScheduleResult{}, err
	}
	if event.StartTime.IsZero() {
		return ScheduleResult{}, ErrNoStartTime
	}

	now := time.Now().UTC()
	sendAt := event.StartTime.UTC().Add(-ReminderLead)
	if sendAt.Before(now) {
		sendAt = now.Add(pastReschedule)
	}

	rows, err := s.members.ListByEvent(ctx, eventID)
	if err != nil {
		return ScheduleResult{}, err
	}
	if len(rows) == 0 {
		s.log.Info("no members for event, skipping reminder scheduling",
			zap.String("event_id", eventID.Hex()))
		return ScheduleResult{}, nil
	}

	var res ScheduleResult
	for _, m := range rows {
		u, err := s.users.GetByID(ctx, m.UserID)
		if err != nil {
			// A vanished user means no address to remind; anything else
			// is a store failure, not a skippable member.
			if errors.Is(err, userstore.ErrNotFound) {
				res.SkippedNoEmail++
				continue
			}
			return res, err
		}
		if strings.TrimSpace(u.Email) == "" {
			res.SkippedNoEmail++
			continue
		}

		exists, err := s.notifications.ExistsPending(ctx, eventID, u.ID, sendAt)
		if err != nil {
			return res, err
		}
		if exists {
			res.SkippedDuplicate++
			continue
		}

		_, err = s.notifications.Create(ctx, models.EventNotification{
			EventID: event.ID,
			UserID:  u.ID,
			SendAt:  sendAt,
			Subject: mailer.ReminderSubject(event),
			Body:    mailer.ReminderBody(event, u),
		})
		if err != nil {
			return res, err
		}
		res.Created++
	}

	s.log.Info("scheduled reminders",
		zap.String("event_id", eventID.Hex()),
		zap.Time("send_at", sendAt),
		zap.Int("created", res.Created),
		zap.Int("skipped_no_email", res.SkippedNoEmail),
		zap.Int("skipped_duplicate", res.SkippedDuplicate))
	return res, nil
}

// ProcessDueNotifications delivers every PENDING reminder whose send time
// has arrived. Each row is handled independently: a delivery error marks
// that row FAILED and is logged, but never stops the sweep or propagates.
// SENT and FAILED are terminal; nothing requeues a failed row.
func (s *Scheduler) ProcessDueNotifications(ctx context.Context) error {
	now := time.Now().UTC()
	due, err := s.notifications.DueBefore(ctx, now)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	s.log.Info("processing pending notifications", zap.Int("count", len(due)))

	for _, n := range due {
		if err := s.deliver(ctx, n); err != nil {
			s.log.Error("failed to send notification",
				zap.String("notification_id", n.ID.Hex()),
				zap.String("user_id", n.UserID.Hex()),
				zap.Error(err))
			if err := s.notifications.MarkFailed(ctx, n.ID); err != nil {
				s.log.Error("failed to mark notification as failed",
					zap.String("notification_id", n.ID.Hex()),
					zap.Error(err))
			}
			continue
		}
		if err := s.notifications.MarkSent(ctx, n.ID, time.Now().UTC()); err != nil {
			s.log.Error("failed to mark notification as sent",
				zap.String("notification_id", n.ID.Hex()),
				zap.Error(err))
		}
	}
	return nil
}

// deliver resolves the recipient's current address and hands the rendered
// message to the sender. A recipient deleted since scheduling is a
// delivery failure for that row only.
func (s *Scheduler) deliver(ctx context.Context, n models.EventNotification) error {
	u, err := s.users.GetByID(ctx, n.UserID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("recipient has no email address")
	}
	return s.sender.Send(ctx, u.Email, n.Subject, n.Body)
}
