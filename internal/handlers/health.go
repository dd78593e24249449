package handlers

import (
	"net/http"
	"time"

	"smartbin-backend/internal/database"
	"smartbin-backend/pkg/utils"
)

// ClientCounter reports connected live clients.
type ClientCounter interface {
	GetClientCount() int
}

func Health(store *database.Store, clients ClientCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]interface{}{
			"status":    "ok",
			"database":  "ok",
			"timestamp": time.Now().Unix(),
		}
		if err := store.DB().PingContext(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = err.Error()
		}
		if clients != nil {
			body["websocket_clients"] = clients.GetClientCount()
		}
		utils.RespondJSON(w, status, body)
	}
}
