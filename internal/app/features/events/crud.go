// internal/app/features/events/crud.go
package events

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nsu/musclub/internal/app/features/shared/api"
	"github.com/nsu/musclub/internal/app/system/timeouts"
	"github.com/nsu/musclub/internal/domain/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	maxTitleLen = 255
	maxVenueLen = 255
)

// eventRequest is the JSON body for create and update.
type eventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Venue       string     `json:"venue,omitempty"`
}

func (req *eventRequest) validate(now time.Time) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return errors.New("title is required")
	}
	if len(title) > maxTitleLen {
		return errors.New("title is too long")
	}
	if len(strings.TrimSpace(req.Venue)) > maxVenueLen {
		return errors.New("venue is too long")
	}
	if req.StartTime.IsZero() {
		return errors.New("start_time is required")
	}
	if req.StartTime.Before(now) {
		return errors.New("start_time must not be in the past")
	}
	if req.EndTime != nil && req.EndTime.Before(req.StartTime) {
		return errors.New("end_time must not be before start_time")
	}
	return nil
}

func (req *eventRequest) toModel() models.Event {
	return models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Venue:       strings.TrimSpace(req.Venue),
	}
}

// eventListResponse is the paged list envelope.
type eventListResponse struct {
	Events  []models.Event `json:"events"`
	Start   int            `json:"start"`
	Limit   int            `json:"limit"`
	HasNext bool           `json:"has_next"`
}

// HandleCreate handles POST /api/events.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(time.Now()); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Events.Create(ctx, req.toModel())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.Log.Info("event created",
		zap.String("event_id", created.ID.Hex()),
		zap.String("title", created.Title))
	api.WriteJSON(w, http.StatusCreated, created)
}

// ServeEvent handles GET /api/events/{id}.
func (h *Handler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	id, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, ev)
}

// ServeList handles GET /api/events with start/limit paging.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	start, limit := pageParams(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, hasNext, err := h.Events.ListPage(ctx, start, limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	api.WriteJSON(w, http.StatusOK, eventListResponse{
		Events:  list,
		Start:   start,
		Limit:   limit,
		HasNext: hasNext,
	})
}

// HandleUpdate handles PUT /api/events/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req eventRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(time.Now()); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Events.UpdateInfo(ctx, id, req.toModel())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /api/events/{id}.
//
// Membership rows are removed and children are detached (promoted to
// roots) before the event document goes away. The cascade steps are
// best-effort: a failure there is logged but does not resurrect the event.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Events.Delete(ctx, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if removed, err := h.Members.RemoveByEvent(ctx, id); err != nil {
		h.Log.Warn("event delete: membership cascade failed",
			zap.String("event_id", id.Hex()),
			zap.Error(err))
	} else if removed > 0 {
		h.Log.Info("event delete: memberships removed",
			zap.String("event_id", id.Hex()),
			zap.Int64("count", removed))
	}

	if detached, err := h.Events.DetachChildren(ctx, id); err != nil {
		h.Log.Warn("event delete: child detach failed",
			zap.String("event_id", id.Hex()),
			zap.Error(err))
	} else if detached > 0 {
		h.Log.Info("event delete: children promoted to roots",
			zap.String("event_id", id.Hex()),
			zap.Int64("count", detached))
	}

	w.WriteHeader(http.StatusNoContent)
}

// pageParams parses start/limit query parameters with defaults and caps.
func pageParams(r *http.Request) (start, limit int) {
	start = 1
	if v, err := strconv.Atoi(r.URL.Query().Get("start")); err == nil && v > 0 {
		start = v
	}
	limit = defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return start, limit
}
