package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartbin-backend/internal/alerts"
	"smartbin-backend/internal/config"
	"smartbin-backend/internal/database"
	"smartbin-backend/internal/handlers"
	"smartbin-backend/internal/logging"
	"smartbin-backend/internal/services"
	"smartbin-backend/internal/telemetry"
	"smartbin-backend/internal/websocket"

	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 SMARTBIN BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	log.Println("📂 Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Invalid configuration")
		log.Printf("   Error: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	logging.Configure(cfg.LogLevel, cfg.LogFormat)
	log.Println("✅ Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("🔌 Connecting to database...")
	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Database connection failed")
		log.Printf("   Error: %v", err)
		log.Println("   This is usually caused by:")
		log.Println("   1. Wrong DATABASE_URL format")
		log.Println("   2. PostgreSQL service is down")
		log.Println("   3. Invalid credentials")
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	defer db.Close()
	log.Println("✅ Database connection established")

	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ FATAL ERROR: Database migrations failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	store := database.NewStore(db)

	log.Println("🌱 Seeding database with initial data...")
	if err := database.SeedSubscriptionPlans(db); err != nil {
		log.Fatalf("❌ FATAL ERROR: Subscription plan seeding failed: %v", err)
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := database.SeedAdmin(store, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("❌ FATAL ERROR: Admin seeding failed: %v", err)
		}
	}
	log.Println("✅ Database seeding completed")

	// Firebase is optional: without credentials pushes are skipped and
	// telemetry stays in SQL.
	log.Println("🔥 Initializing Firebase...")
	app, err := services.NewFirebaseApp(ctx, cfg.FirebaseCredentialsBase64, cfg.FirebaseCredentialsFile, cfg.FirebaseProjectID)
	if err != nil {
		if errors.Is(err, services.ErrFirebaseNotConfigured) {
			log.Warn("⚠️  Firebase credentials not set, push notifications disabled")
		} else {
			log.WithError(err).Warn("⚠️  Firebase initialization failed, push notifications disabled")
		}
		app = nil
	}

	var pusher services.Pusher
	if app != nil {
		fcm, err := services.NewFCMService(ctx, app)
		if err != nil {
			log.WithError(err).Warn("⚠️  FCM client unavailable, push notifications disabled")
		} else {
			pusher = fcm
			log.Println("✅ FCM service ready")
		}
	}

	source := telemetrySource(ctx, cfg, app, store)
	discovery := telemetry.NewDiscovery(source, cfg.DefaultApplicationID)

	log.Println("🔌 Starting WebSocket hub...")
	hub := websocket.NewHub()
	go hub.Run(ctx)
	log.Println("✅ WebSocket hub started")

	notifier := services.NewAlertNotifier(store, hub, pusher)
	evaluator := alerts.NewEvaluator(store, source, notifier)
	scheduler := alerts.NewScheduler(evaluator, cfg.AlertInterval)
	scheduler.Start(ctx)
	log.Printf("⏰ Alert evaluation scheduled every %s", cfg.AlertInterval)

	router := handlers.NewRouter(handlers.Dependencies{
		Store:          store,
		Source:         source,
		Discovery:      discovery,
		Alerts:         scheduler,
		Hub:            hub,
		JWTSecret:      cfg.JWTSecret,
		RequestLogging: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("═══════════════════════════════════════════════════════════════════")
		log.Printf("🚀 Server listening on port %s", cfg.Port)
		log.Println("═══════════════════════════════════════════════════════════════════")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutdown signal received")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("❌ Graceful shutdown failed")
	}
	log.Println("👋 Server stopped")
}

// telemetrySource picks the device and sample backend. Firestore falls back
// to SQL when Firebase is unavailable.
func telemetrySource(ctx context.Context, cfg *config.Config, app *firebase.App, store *database.Store) telemetry.Source {
	if cfg.TelemetryBackend != config.TelemetryFirestore {
		log.Println("📡 Telemetry backend: SQL")
		return telemetry.NewSQLSource(store.DB())
	}
	if app == nil {
		log.Warn("⚠️  Firestore telemetry requested without Firebase, using SQL")
		return telemetry.NewSQLSource(store.DB())
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		log.WithError(err).Warn("⚠️  Firestore client unavailable, using SQL")
		return telemetry.NewSQLSource(store.DB())
	}
	log.Println("📡 Telemetry backend: Firestore")
	return telemetry.NewFirestoreSource(client)
}
