package app

import (
	redisclient "github.com/praxislabs/execemy-backend/internal/clients/redis"
	"github.com/praxislabs/execemy-backend/internal/logger"
)

type Clients struct {
	Popularity redisclient.PopularityStore
}

// wireClients brings up optional external clients. A missing Redis is not
// fatal: popularity falls back to catalog order.
func wireClients(log *logger.Logger) Clients {
	log.Info("Wiring clients...")
	popularity, err := redisclient.NewPopularityStore(log)
	if err != nil {
		log.Warn("Popularity store unavailable, falling back to catalog order", "error", err)
		popularity = nil
	}
	return Clients{Popularity: popularity}
}
