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

func ListSmartBins(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		bins, err := store.ListSmartBins(r.Context(), claims.Scope())
		if err != nil {
			respondStoreError(w, err, "Smart bins")
			return
		}
		utils.Success(w, bins)
	}
}

func CreateSmartBin(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		var req models.BinRequest
		if !utils.DecodeAndValidate(w, r, &req) {
			return
		}

		bin, err := store.CreateSmartBin(r.Context(), req.Attributes(req.Name, claims.Email, &claims.UserID))
		if err != nil {
			respondStoreError(w, err, "Smart bin")
			return
		}

		log.Printf("✅ Smart bin created: %s (%s)", bin.Name, bin.ID)
		utils.RespondJSON(w, http.StatusCreated, bin)
	}
}

// GetSmartBin returns the bin together with its compartments.
func GetSmartBin(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)
		id := chi.URLParam(r, "id")

		bin, err := store.GetSmartBin(r.Context(), claims.Scope(), id)
		if err != nil {
			respondStoreError(w, err, "Smart bin")
			return
		}

		compartments, err := store.ListCompartments(r.Context(), models.AllOwners(), id)
		if err != nil {
			respondStoreError(w, err, "Compartments")
			return
		}

		utils.Success(w, models.SmartBinWithCompartments{SmartBin: *bin, Compartments: compartments})
	}
}

func UpdateSmartBin(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		var req models.UpdateBinRequest
		if !utils.DecodeAndValidate(w, r, &req) {
			return
		}

		bin, err := store.UpdateSmartBin(r.Context(), claims.Scope(), chi.URLParam(r, "id"), &req)
		if err != nil {
			respondStoreError(w, err, "Smart bin")
			return
		}
		utils.Success(w, bin)
	}
}

// DeleteSmartBin deletes the bin and all of its compartments.
func DeleteSmartBin(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)
		id := chi.URLParam(r, "id")

		removed, err := store.DeleteSmartBin(r.Context(), claims.Scope(), id)
		if err != nil {
			respondStoreError(w, err, "Smart bin")
			return
		}

		log.Printf("🗑️  Smart bin %s deleted with %d compartment(s)", id, removed)
		utils.Success(w, map[string]interface{}{
			"success":              true,
			"deleted_compartments": removed,
		})
	}
}

func ListSingleBins(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		bins, err := store.ListSingleBins(r.Context(), claims.Scope())
		if err != nil {
			respondStoreError(w, err, "Single bins")
			return
		}
		utils.Success(w, bins)
	}
}

func CreateSingleBin(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		var req models.BinRequest
		if !utils.DecodeAndValidate(w, r, &req) {
			return
		}

		bin, err := store.CreateSingleBin(r.Context(), req.WasteType, req.Attributes(req.Name, claims.Email, &claims.UserID))
		if err != nil {
			respondStoreError(w, err, "Single bin")
			return
		}

		log.Printf("✅ Single bin created: %s (%s)", bin.Name, bin.ID)
		utils.RespondJSON(w, http.StatusCreated, bin)
	}
}

func UpdateSingleBin(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		var req models.UpdateBinRequest
		if !utils.DecodeAndValidate(w, r, &req) {
			return
		}

		bin, err := store.UpdateSingleBin(r.Context(), claims.Scope(), chi.URLParam(r, "id"), &req)
		if err != nil {
			respondStoreError(w, err, "Single bin")
			return
		}
		utils.Success(w, bin)
	}
}

func DeleteSingleBin(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		if err := store.DeleteSingleBin(r.Context(), claims.Scope(), chi.URLParam(r, "id")); err != nil {
			respondStoreError(w, err, "Single bin")
			return
		}
		utils.Success(w, map[string]interface{}{"success": true})
	}
}
