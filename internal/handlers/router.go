package handlers

import (
	"net/http"

	"smartbin-backend/internal/database"
	"smartbin-backend/internal/middleware"
	"smartbin-backend/internal/models"
	"smartbin-backend/internal/telemetry"
	"smartbin-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Dependencies struct {
	Store     *database.Store
	Source    telemetry.Source
	Discovery *telemetry.Discovery
	Alerts    AlertTrigger
	Hub       *websocket.Hub
	JWTSecret string
	// RequestLogging enables chi's request logger.
	RequestLogging bool
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Middleware
	if deps.RequestLogging {
		r.Use(chimiddleware.Logger)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var clients ClientCounter
	if deps.Hub != nil {
		clients = deps.Hub
	}
	r.Get("/health", Health(deps.Store, clients))

	// Public
	r.Post("/auth/login", Login(deps.Store, deps.JWTSecret))
	r.Get("/api/subscription-plans", ListSubscriptionPlans(deps.Store))
	if deps.Hub != nil {
		r.Get("/ws", websocket.HandleWebSocket(deps.Hub, deps.JWTSecret))
	}

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.JWTSecret))

		r.Get("/auth/me", GetMe(deps.Store))
		r.Put("/auth/me", UpdateMe(deps.Store))

		r.Route("/api/smartbins", func(r chi.Router) {
			r.Get("/", ListSmartBins(deps.Store))
			r.Post("/", CreateSmartBin(deps.Store))
			r.Get("/{id}", GetSmartBin(deps.Store))
			r.Patch("/{id}", UpdateSmartBin(deps.Store))
			r.Delete("/{id}", DeleteSmartBin(deps.Store))
			r.Get("/{id}/compartments", ListCompartments(deps.Store))
		})

		r.Route("/api/compartments", func(r chi.Router) {
			r.Get("/", ListCompartments(deps.Store))
			r.Post("/", CreateCompartment(deps.Store))
			r.Patch("/{id}", UpdateCompartment(deps.Store))
			r.Delete("/{id}", DeleteCompartment(deps.Store))
		})

		r.Route("/api/singlebins", func(r chi.Router) {
			r.Get("/", ListSingleBins(deps.Store))
			r.Post("/", CreateSingleBin(deps.Store))
			r.Patch("/{id}", UpdateSingleBin(deps.Store))
			r.Delete("/{id}", DeleteSingleBin(deps.Store))
		})

		r.Route("/api/alerts", func(r chi.Router) {
			r.Get("/", ListAlerts(deps.Store))
			r.Put("/{id}/acknowledge", AcknowledgeAlert(deps.Store))
			if deps.Alerts != nil {
				r.Post("/check", CheckAlerts(deps.Alerts))
			}
		})

		r.Route("/api/devices", func(r chi.Router) {
			r.Get("/", ListDevices(deps.Discovery))
			r.Post("/", RegisterDevice(deps.Source, deps.Discovery))
			r.Get("/{deviceId}/suggestion", GetDeviceSuggestion(deps.Discovery))
			r.Post("/{deviceId}/samples", RecordSample(deps.Source))
		})

		r.Post("/api/notifications/fcm-token", RegisterFCMToken(deps.Store))

		r.With(middleware.RequireRole(models.RoleAdmin)).Post("/api/users", CreateUser(deps.Store))
	})

	return r
}
