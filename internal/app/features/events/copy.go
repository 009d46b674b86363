// internal/app/features/events/copy.go
package events

import (
	"context"
	"net/http"

	"github.com/nsu/musclub/internal/app/features/shared/api"
	"github.com/nsu/musclub/internal/app/system/timeouts"
)

// posterResponse carries the generated poster text and whether it was
// persisted onto the event.
type posterResponse struct {
	Description string `json:"description"`
	Saved       bool   `json:"saved"`
}

// socialPostRequest selects the platform and tone for a generated post.
// Both are optional; blanks fall back to general/casual.
type socialPostRequest struct {
	Platform string `json:"platform,omitempty"`
	Tone     string `json:"tone,omitempty"`
}

// HandleGeneratePoster handles POST /api/events/{id}/poster?save=bool.
func (h *Handler) HandleGeneratePoster(w http.ResponseWriter, r *http.Request) {
	id, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	save := r.URL.Query().Get("save") == "true"

	// The provider call dominates here; the store round-trips are cheap.
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	text, err := h.Poster.GeneratePoster(ctx, id, save)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, posterResponse{Description: text, Saved: save})
}

// HandleGenerateSocialPost handles POST /api/events/{id}/social-post.
func (h *Handler) HandleGenerateSocialPost(w http.ResponseWriter, r *http.Request) {
	id, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req socialPostRequest
	if r.ContentLength > 0 {
		if err := api.Decode(r, &req); err != nil {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	post, err := h.Social.Generate(ctx, id, req.Platform, req.Tone)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, post)
}
