package http

import (
	"github.com/nats-io/nats.go"

	"github.com/wanderlust-app/wanderlust/internal/adapters/postgres"
	"github.com/wanderlust-app/wanderlust/internal/adapters/valkey"
	"github.com/wanderlust-app/wanderlust/internal/core/ports"
	"github.com/wanderlust-app/wanderlust/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Tracker      *usecases.TrackingService
	Streets      *usecases.StreetGraphService
	Ledger       *usecases.ExplorationService
	Suggestions  *usecases.RouteSuggestionService
	Achievements *usecases.AchievementService
	History      *usecases.HistoryService
	Events       ports.EventPublisher
	NATS         *nats.Conn
	DB           *postgres.DB
	Cache        *valkey.Cache
}
