package handlers

import (
	"net/http"

	"smartbin-backend/internal/database"
	"smartbin-backend/internal/middleware"
	"smartbin-backend/internal/models"
	"smartbin-backend/pkg/utils"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	Name             string `json:"name" validate:"required"`
	Role             string `json:"role" validate:"required,oneof=user admin"`
	ApplicationID    string `json:"application_id"`
	SubscriptionPlan string `json:"subscription_plan"`
}

type CreateUserResponse struct {
	Success bool                 `json:"success"`
	User    *models.UserResponse `json:"user,omitempty"`
	Message string               `json:"message,omitempty"`
}

// CreateUser creates a new dashboard account
// Requires admin authentication
func CreateUser(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if !utils.DecodeAndValidate(w, r, &req) {
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.WithError(err).Error("❌ Failed to hash password")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}

		user := &models.User{
			Email:            req.Email,
			Password:         string(hashedPassword),
			Name:             req.Name,
			Role:             req.Role,
			ApplicationID:    req.ApplicationID,
			SubscriptionPlan: req.SubscriptionPlan,
			NotificationPreferences: models.NotificationPreferences{
				NotifyEmail: true,
				NotifyPush:  true,
			},
		}
		if err := store.CreateUser(r.Context(), user); err != nil {
			respondStoreError(w, err, "User")
			return
		}

		log.Printf("✅ User created: %s (%s)", user.Email, user.Role)
		resp := user.ToUserResponse()
		utils.RespondJSON(w, http.StatusCreated, CreateUserResponse{
			Success: true,
			User:    &resp,
			Message: "User created successfully",
		})
	}
}

type RegisterFCMTokenRequest struct {
	Token      string `json:"token" validate:"required"`
	DeviceType string `json:"device_type" validate:"required,oneof=ios android web"`
}

// RegisterFCMToken stores a push token for the authenticated user.
func RegisterFCMToken(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		var req RegisterFCMTokenRequest
		if !utils.DecodeAndValidate(w, r, &req) {
			return
		}

		if err := store.UpsertFCMToken(r.Context(), claims.UserID, req.Token, req.DeviceType); err != nil {
			respondStoreError(w, err, "FCM token")
			return
		}

		log.Printf("📱 FCM token registered for %s (%s)", claims.Email, req.DeviceType)
		utils.Success(w, map[string]interface{}{"success": true})
	}
}

func ListSubscriptionPlans(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := store.ListSubscriptionPlans(r.Context())
		if err != nil {
			respondStoreError(w, err, "Subscription plans")
			return
		}
		utils.Success(w, plans)
	}
}
