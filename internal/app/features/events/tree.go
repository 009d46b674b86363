// internal/app/features/events/tree.go
package events

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nsu/musclub/internal/app/features/shared/api"
	"github.com/nsu/musclub/internal/app/system/timeouts"
)

// maxTreeDepth caps how deep one request may materialize. Deeper trees
// are served level by level through repeated calls.
const maxTreeDepth = 10

// ServeTree handles GET /api/events/{id}/tree?depth=N.
// depth defaults to 1 (the event alone); values above the cap are clamped.
func (h *Handler) ServeTree(w http.ResponseWriter, r *http.Request) {
	id, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	depth := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("depth")); err == nil {
		depth = v
	}
	if depth > maxTreeDepth {
		depth = maxTreeDepth
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	tree, err := h.Relation.GetTree(ctx, id, depth)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, tree)
}
