// internal/app/system/mailer/templates.go
package mailer

import (
	"fmt"
	"strings"

	"github.com/nsu/musclub/internal/domain/models"
)

// Reminder emails are rendered once, at scheduling time, and stored on the
// notification row; what was rendered is exactly what gets sent, even if
// the event changes afterwards.

const reminderTimeLayout = "02.01.2006 15:04"

// ReminderSubject renders the subject line for an event reminder.
func ReminderSubject(event models.Event) string {
	return "Напоминание: " + event.Title
}

// ReminderBody renders the plain-text reminder body. Missing venue and
// username fall back to neutral placeholders rather than blank lines.
func ReminderBody(event models.Event, user models.User) string {
	venue := strings.TrimSpace(event.Venue)
	if venue == "" {
		venue = "место уточняется"
	}
	username := strings.TrimSpace(user.Username)
	if username == "" {
		username = "участник"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Привет, %s!\n\n", username)
	fmt.Fprintf(&b, "Напоминаем о мероприятии «%s».\n\n", event.Title)
	fmt.Fprintf(&b, "Время начала: %s\n", event.StartTime.Format(reminderTimeLayout))
	fmt.Fprintf(&b, "Место: %s\n\n", venue)
	b.WriteString("До встречи!\n")
	return b.String()
}
