package handlers

import (
	"net/http"

	"smartbin-backend/internal/database"
	"smartbin-backend/pkg/utils"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// respondStoreError maps repository errors onto HTTP statuses.
func respondStoreError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, database.ErrConflict):
		utils.RespondError(w, http.StatusConflict, what+" already exists")
	default:
		log.WithError(err).Errorf("❌ %s operation failed", what)
		utils.RespondError(w, http.StatusInternalServerError, "Database error")
	}
}
