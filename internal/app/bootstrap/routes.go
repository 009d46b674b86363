// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nsu/musclub/internal/app/ai"
	eventsfeature "github.com/nsu/musclub/internal/app/features/events"
	healthfeature "github.com/nsu/musclub/internal/app/features/health"
	usersfeature "github.com/nsu/musclub/internal/app/features/users"
	"github.com/nsu/musclub/internal/app/relation"
	eventstore "github.com/nsu/musclub/internal/app/store/events"
	memberstore "github.com/nsu/musclub/internal/app/store/members"
	userstore "github.com/nsu/musclub/internal/app/store/users"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed, so the scheduler built in Startup is
// available here.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	events := eventstore.New(db)
	users := userstore.New(db)
	members := memberstore.New(db)

	rel := relation.New(events, users, members, logger)

	client := ai.NewClient(appCfg.DeepSeekAPIURL, appCfg.DeepSeekAPIKey, appCfg.DeepSeekModel)
	poster := ai.NewPosterService(events, client, logger)
	social := ai.NewSocialPostService(events, client, logger)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	eventsHandler := eventsfeature.NewHandler(events, members, rel, scheduler, poster, social, logger)
	r.Mount("/api/events", eventsfeature.Routes(eventsHandler))

	usersHandler := usersfeature.NewHandler(users, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler))

	return r, nil
}
