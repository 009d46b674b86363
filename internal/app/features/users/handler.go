// internal/app/features/users/handler.go
package users

import (
	"go.uber.org/zap"

	userstore "github.com/nsu/musclub/internal/app/store/users"
)

// Handler is the dependency container for the users feature.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a users Handler.
func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}
