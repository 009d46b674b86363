// internal/app/features/events/errors.go
package events

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/nsu/musclub/internal/app/ai"
	"github.com/nsu/musclub/internal/app/features/shared/api"
	"github.com/nsu/musclub/internal/app/notify"
	"github.com/nsu/musclub/internal/app/relation"
	eventstore "github.com/nsu/musclub/internal/app/store/events"
)

// writeServiceError translates the service-layer sentinels into HTTP
// statuses. Anything unrecognized is a 500 and gets logged here so the
// individual handlers stay free of logging boilerplate.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, eventstore.ErrNotFound),
		errors.Is(err, relation.ErrEventNotFound),
		errors.Is(err, notify.ErrEventNotFound),
		errors.Is(err, ai.ErrEventNotFound):
		api.Error(w, http.StatusNotFound, "event not found")
	case errors.Is(err, relation.ErrUserNotFound):
		api.Error(w, http.StatusNotFound, "user not found")
	case errors.Is(err, relation.ErrMemberNotFound):
		api.Error(w, http.StatusNotFound, "membership not found")
	case errors.Is(err, relation.ErrCycle),
		errors.Is(err, relation.ErrNotDirectChild),
		errors.Is(err, relation.ErrBadRole),
		errors.Is(err, notify.ErrNoStartTime):
		api.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrPaymentRequired):
		api.Error(w, http.StatusBadGateway,
			"AI provider returned payment error (Insufficient Balance). Please contact administrator.")
	case errors.Is(err, ai.ErrUnavailable):
		api.Error(w, http.StatusServiceUnavailable,
			"AI provider temporarily unavailable, please try again later")
	default:
		h.Log.Error("events: request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "internal error")
	}
}
