// internal/app/features/events/members.go
package events

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/nsu/musclub/internal/app/features/shared/api"
	"github.com/nsu/musclub/internal/app/relation"
	"github.com/nsu/musclub/internal/app/system/timeouts"
)

// upsertMemberRequest is the JSON body for adding a user to an event or
// changing their role.
type upsertMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// ServeMembers handles GET /api/events/{id}/members.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	id, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	members, err := h.Relation.ListMembers(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if members == nil {
		members = []relation.MemberSummary{}
	}
	api.WriteJSON(w, http.StatusOK, members)
}

// HandleUpsertMember handles POST /api/events/{id}/members.
// Adding a user who is already a member updates their role in place.
func (h *Handler) HandleUpsertMember(w http.ResponseWriter, r *http.Request) {
	id, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req upsertMemberRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := api.ParseID(req.UserID)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	summary, err := h.Relation.UpsertMember(ctx, id, userID, req.Role)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.Log.Info("event member upserted",
		zap.String("event_id", id.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.String("role", summary.Role))
	api.WriteJSON(w, http.StatusOK, summary)
}

// HandleRemoveMember handles DELETE /api/events/{id}/members/{userID}.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := api.URLParamID(r, "userID")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Relation.RemoveMember(ctx, id, userID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
