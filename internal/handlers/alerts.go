package handlers

import (
	"context"
	"net/http"
	"strconv"

	"smartbin-backend/internal/alerts"
	"smartbin-backend/internal/database"
	"smartbin-backend/internal/middleware"
	"smartbin-backend/internal/models"
	"smartbin-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// AlertTrigger runs an evaluation pass on demand.
type AlertTrigger interface {
	TriggerNow(ctx context.Context) alerts.Result
}

// ListAlerts supports the acknowledged, entity_id and limit query parameters.
func ListAlerts(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)
		q := r.URL.Query()

		filter := models.AlertFilter{
			Scope:    claims.Scope(),
			EntityID: q.Get("entity_id"),
		}
		if v := q.Get("acknowledged"); v != "" {
			ack, err := strconv.ParseBool(v)
			if err != nil {
				utils.RespondError(w, http.StatusBadRequest, "acknowledged must be true or false")
				return
			}
			filter.Acknowledged = &ack
		}
		if v := q.Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil {
				utils.RespondError(w, http.StatusBadRequest, "limit must be a number")
				return
			}
			filter.Limit = limit
		}

		list, err := store.ListAlerts(r.Context(), filter)
		if err != nil {
			respondStoreError(w, err, "Alerts")
			return
		}
		utils.Success(w, list)
	}
}

// AcknowledgeAlert marks one alert as reviewed. The record is kept.
func AcknowledgeAlert(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		alert, err := store.AcknowledgeAlert(r.Context(), claims.Scope(), chi.URLParam(r, "id"), claims.Email)
		if err != nil {
			respondStoreError(w, err, "Alert")
			return
		}

		log.Printf("✅ Alert %s acknowledged by %s", alert.ID, claims.Email)
		utils.Success(w, alert)
	}
}

// CheckAlerts is the manual "check now" entry point.
func CheckAlerts(trigger AlertTrigger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)
		log.Printf("🔄 Manual alert check requested by %s", claims.Email)

		utils.Success(w, scopedResult(trigger.TriggerNow(r.Context()), claims.Scope()))
	}
}

// scopedResult keeps the pass counters but drops alerts outside scope.
func scopedResult(result alerts.Result, scope models.OwnerScope) alerts.Result {
	if scope.All {
		return result
	}
	result.Created = ownedAlerts(result.Created, scope.Email)
	result.Refreshed = ownedAlerts(result.Refreshed, scope.Email)
	return result
}

func ownedAlerts(list []models.Alert, email string) []models.Alert {
	owned := []models.Alert{}
	for _, a := range list {
		if a.CreatedBy == email {
			owned = append(owned, a)
		}
	}
	return owned
}
