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

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	OK    bool                 `json:"ok"`
	Token string               `json:"token,omitempty"`
	User  *models.UserResponse `json:"user,omitempty"`
}

func Login(store *database.Store, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !utils.DecodeAndValidate(w, r, &req) {
			return
		}

		log.Printf("🔐 Login attempt for: %s", req.Email)

		user, err := store.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			log.Printf("❌ User not found: %s", req.Email)
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			log.Printf("❌ Invalid password for: %s", req.Email)
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		token, err := middleware.IssueToken(jwtSecret, user)
		if err != nil {
			log.WithError(err).Error("❌ Failed to create token")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create token")
			return
		}

		userResponse := user.ToUserResponse()
		log.Printf("✅ Login successful: %s (%s)", user.Email, user.Role)

		utils.RespondJSON(w, http.StatusOK, LoginResponse{
			OK:    true,
			Token: token,
			User:  &userResponse,
		})
	}
}

// GetMe returns the authenticated user's profile.
func GetMe(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		user, err := store.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			respondStoreError(w, err, "User")
			return
		}
		utils.Success(w, user.ToUserResponse())
	}
}

// UpdateMe applies a partial profile update, including notification preferences.
func UpdateMe(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetUserFromContext(r)

		var req models.UpdateProfileRequest
		if !utils.DecodeAndValidate(w, r, &req) {
			return
		}

		if claims.Role != models.RoleAdmin {
			// Plans and tenants are assigned by admins.
			req.SubscriptionPlan = nil
			req.ApplicationID = nil
		}

		user, err := store.UpdateUserProfile(r.Context(), claims.UserID, &req)
		if err != nil {
			respondStoreError(w, err, "User")
			return
		}

		log.Printf("✅ Profile updated: %s", user.Email)
		utils.Success(w, user.ToUserResponse())
	}
}
