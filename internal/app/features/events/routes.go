// internal/app/features/events/routes.go
package events

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /api/events.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// CRUD
	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeEvent)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	// MEMBERSHIP
	r.Get("/{id}/members", h.ServeMembers)
	r.Post("/{id}/members", h.HandleUpsertMember)
	r.Delete("/{id}/members/{userID}", h.HandleRemoveMember)

	// HIERARCHY
	r.Post("/{id}/children", h.HandleCreateSubEvent)
	r.Put("/{id}/children/{childID}", h.HandleAttachChild)
	r.Delete("/{id}/children/{childID}", h.HandleDetachChild)
	r.Get("/{id}/tree", h.ServeTree)

	// REMINDERS
	r.Post("/{id}/notifications", h.HandleScheduleReminders)

	// AI COPY
	r.Post("/{id}/poster", h.HandleGeneratePoster)
	r.Post("/{id}/social-post", h.HandleGenerateSocialPost)

	return r
}
