// internal/app/features/events/notifications.go
package events

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/nsu/musclub/internal/app/features/shared/api"
	"github.com/nsu/musclub/internal/app/system/timeouts"
)

// HandleScheduleReminders handles POST /api/events/{id}/notifications.
//
// The call books reminder rows; delivery happens later in the sweep, so
// the reply is 202 with the per-member booking counts rather than 200.
func (h *Handler) HandleScheduleReminders(w http.ResponseWriter, r *http.Request) {
	id, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	result, err := h.Scheduler.ScheduleReminders(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.Log.Info("reminders scheduled",
		zap.String("event_id", id.Hex()),
		zap.Int("created", result.Created),
		zap.Int("skipped_no_email", result.SkippedNoEmail),
		zap.Int("skipped_duplicate", result.SkippedDuplicate))
	api.WriteJSON(w, http.StatusAccepted, result)
}
