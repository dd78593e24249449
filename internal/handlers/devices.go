package handlers

import (
	"net/http"

	"smartbin-backend/internal/middleware"
	"smartbin-backend/internal/models"
	"smartbin-backend/internal/telemetry"
	"smartbin-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ListDevices lists the devices of the user's application. Admins may ask
// for another application with the application_id query parameter.
func ListDevices(discovery *telemetry.Discovery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		appID := claims.ApplicationID
		if v := r.URL.Query().Get("application_id"); v != "" && claims.Role == models.RoleAdmin {
			appID = v
		}

		utils.Success(w, discovery.ListAvailableDevices(r.Context(), appID))
	}
}

func RegisterDevice(source telemetry.Source, discovery *telemetry.Discovery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		var req models.RegisterDeviceRequest
		if !utils.DecodeAndValidate(w, r, &req) {
			return
		}

		appID := claims.ApplicationID
		if req.ApplicationID != "" && claims.Role == models.RoleAdmin {
			appID = req.ApplicationID
		}

		device := models.Device{
			DeviceID:      req.DeviceID,
			ApplicationID: discovery.ResolveApplicationID(appID),
			Name:          req.Name,
		}
		if err := source.RegisterDevice(r.Context(), device); err != nil {
			log.WithError(err).Error("❌ Device registration failed")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register device")
			return
		}

		log.Printf("📡 Device registered: %s (%s)", device.DeviceID, device.ApplicationID)
		utils.RespondJSON(w, http.StatusCreated, device)
	}
}

// GetDeviceSuggestion suggests bin attributes for one of the user's devices.
func GetDeviceSuggestion(discovery *telemetry.Discovery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)
		deviceID := chi.URLParam(r, "deviceId")

		for _, d := range discovery.ListAvailableDevices(r.Context(), claims.ApplicationID) {
			if d.DeviceID == deviceID {
				utils.Success(w, telemetry.SuggestAttributes(d.Device))
				return
			}
		}
		utils.RespondError(w, http.StatusNotFound, "Device not found")
	}
}

// RecordSample ingests a reading for a registered device.
func RecordSample(source telemetry.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := chi.URLParam(r, "deviceId")

		var sample models.SensorSample
		if !utils.DecodeAndValidate(w, r, &sample) {
			return
		}

		err := source.RecordSample(r.Context(), deviceID, sample)
		if errors.Is(err, telemetry.ErrDeviceNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Device not found")
			return
		}
		if err != nil {
			log.WithError(err).Error("❌ Recording sample failed")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to record sample")
			return
		}
		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{"success": true})
	}
}
