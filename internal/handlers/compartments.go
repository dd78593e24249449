package handlers

import (
	"net/http"

	"smartbin-backend/internal/database"
	"smartbin-backend/internal/middleware"
	"smartbin-backend/internal/models"
	"smartbin-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// ListCompartments lists visible compartments, narrowed by the smartbin_id
// query parameter or the {id} route parameter when present.
func ListCompartments(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		smartBinID := chi.URLParam(r, "id")
		if smartBinID == "" {
			smartBinID = r.URL.Query().Get("smartbin_id")
		}

		compartments, err := store.ListCompartments(r.Context(), claims.Scope(), smartBinID)
		if err != nil {
			respondStoreError(w, err, "Compartments")
			return
		}
		utils.Success(w, compartments)
	}
}

// CreateCompartment adds a compartment to a SmartBin. Without an identifier
// one is generated; the compartment's owner and default location come from
// the SmartBin.
func CreateCompartment(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		var req models.CreateCompartmentRequest
		if !utils.DecodeAndValidate(w, r, &req) {
			return
		}

		compartment, err := store.CreateCompartment(r.Context(), claims.Scope(),
			req.SmartBinID, req.Identifier, req.WasteType, req.Attributes("", "", nil))
		if err != nil {
			respondStoreError(w, err, "Compartment")
			return
		}

		log.Printf("✅ Compartment created: %s in %s", compartment.Identifier, compartment.SmartBinID)
		utils.RespondJSON(w, http.StatusCreated, compartment)
	}
}

func UpdateCompartment(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		var req models.UpdateBinRequest
		if !utils.DecodeAndValidate(w, r, &req) {
			return
		}

		compartment, err := store.UpdateCompartment(r.Context(), claims.Scope(), chi.URLParam(r, "id"), &req)
		if err != nil {
			respondStoreError(w, err, "Compartment")
			return
		}
		utils.Success(w, compartment)
	}
}

func DeleteCompartment(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		if err := store.DeleteCompartment(r.Context(), claims.Scope(), chi.URLParam(r, "id")); err != nil {
			respondStoreError(w, err, "Compartment")
			return
		}
		utils.Success(w, map[string]interface{}{"success": true})
	}
}
