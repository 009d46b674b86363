package mailer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/nsu/musclub/internal/app/system/mailer"
	"github.com/nsu/musclub/internal/domain/models"
)

func TestReminderSubject(t *testing.T) {
	got := mailer.ReminderSubject(models.Event{Title: "Весенний концерт"})
	if got != "Напоминание: Весенний концерт" {
		t.Fatalf("subject: got %q", got)
	}
}

func TestReminderBody(t *testing.T) {
	event := models.Event{
		Title:     "Весенний концерт",
		StartTime: time.Date(2026, 3, 8, 18, 30, 0, 0, time.UTC),
		Venue:     "Актовый зал",
	}
	user := models.User{Username: "alice"}

	body := mailer.ReminderBody(event, user)

	for _, want := range []string{
		"Привет, alice!",
		"Весенний концерт",
		"08.03.2026 18:30",
		"Место: Актовый зал",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestReminderBody_Fallbacks(t *testing.T) {
	event := models.Event{
		Title:     "Концерт",
		StartTime: time.Date(2026, 3, 8, 18, 30, 0, 0, time.UTC),
	}

	body := mailer.ReminderBody(event, models.User{Username: "   "})

	if !strings.Contains(body, "Привет, участник!") {
		t.Errorf("expected username fallback, got:\n%s", body)
	}
	if !strings.Contains(body, "Место: место уточняется") {
		t.Errorf("expected venue fallback, got:\n%s", body)
	}
}
