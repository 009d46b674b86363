// internal/app/features/events/children.go
package events

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nsu/musclub/internal/app/features/shared/api"
	"github.com/nsu/musclub/internal/app/system/timeouts"
)

// HandleCreateSubEvent handles POST /api/events/{id}/children.
// The new event is created directly under {id}; a fresh node cannot
// close a cycle, so this path skips the ancestor walk.
func (h *Handler) HandleCreateSubEvent(w http.ResponseWriter, r *http.Request) {
	parentID, err := api.URLParamID(r, "id")
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Relation.CreateSubEvent(ctx, parentID, req.toModel())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.Log.Info("sub-event created",
		zap.String("parent_id", parentID.Hex()),
		zap.String("event_id", created.ID.Hex()))
	api.WriteJSON(w, http.StatusCreated, created)
}

// HandleAttachChild handles PUT /api/events/{id}/children/{childID}.
// Attaching a child to the parent it already has succeeds without change.
func (h *Handler) HandleAttachChild(w http.ResponseWriter, r *http.Request) {
	parentID, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	childID, err := api.URLParamID(r, "childID")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Relation.AttachChild(ctx, parentID, childID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDetachChild handles DELETE /api/events/{id}/children/{childID}.
func (h *Handler) HandleDetachChild(w http.ResponseWriter, r *http.Request) {
	parentID, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	childID, err := api.URLParamID(r, "childID")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Relation.DetachChild(ctx, parentID, childID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
