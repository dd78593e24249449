// Command migrate applies the schema and seeds without starting the server.
package main

import (
	"smartbin-backend/internal/config"
	"smartbin-backend/internal/database"
	"smartbin-backend/internal/logging"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logging.Configure(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if err := database.SeedSubscriptionPlans(db); err != nil {
		log.Fatalf("Seeding subscription plans failed: %v", err)
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := database.SeedAdmin(database.NewStore(db), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("Seeding admin failed: %v", err)
		}
	}

	var plans int
	if err := db.Get(&plans, `SELECT COUNT(*) FROM subscription_plans`); err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}
	log.Printf("✅ Migration completed successfully! %d subscription plan(s) available", plans)
}
