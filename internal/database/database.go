package database

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrAlertExists = errors.New("unacknowledged alert already exists")
	ErrConflict    = errors.New("already exists")
)

// Store is the repository over every SQL-backed entity. Queries are written
// with '?' placeholders and rebound for the driver in use.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

func Connect(driver, dbURL string) (*sqlx.DB, error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🔌 DATABASE CONNECTION ATTEMPT")
	log.Printf("   📍 Driver: %s", driver)
	log.Printf("   📍 URL prefix: %s...", dbURL[:min(30, len(dbURL))])
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	db, err := sqlx.Connect(driver, dbURL)
	if err != nil {
		log.Errorf("❌ DATABASE CONNECTION FAILED: %v", err)
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		log.Errorf("❌ DATABASE PING FAILED: %v", err)
		return nil, errors.Wrap(err, "failed to ping database")
	}

	log.Println("✅ DATABASE CONNECTION SUCCESSFUL")
	return db, nil
}

// Migrate creates every table and index. The DDL is kept to the subset
// shared by PostgreSQL and SQLite.
func Migrate(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('user', 'admin')),
			application_id TEXT NOT NULL DEFAULT '',
			subscription_plan TEXT NOT NULL DEFAULT 'basic',
			notify_email BOOLEAN NOT NULL DEFAULT TRUE,
			notify_sms BOOLEAN NOT NULL DEFAULT FALSE,
			notify_whatsapp BOOLEAN NOT NULL DEFAULT FALSE,
			notify_push BOOLEAN NOT NULL DEFAULT TRUE,
			notification_email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			whatsapp_number TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS subscription_plans (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price_cents INTEGER NOT NULL DEFAULT 0,
			max_bins INTEGER NOT NULL DEFAULT 0,
			features TEXT NOT NULL DEFAULT '[]'
		)`,

		`CREATE TABLE IF NOT EXISTS smart_bins (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			capacity DOUBLE PRECISION NOT NULL DEFAULT 0,
			bin_height DOUBLE PRECISION NOT NULL DEFAULT 0,
			status TEXT NOT NULL CHECK(status IN ('active', 'inactive', 'maintenance')),
			device_id TEXT,
			sensors TEXT NOT NULL DEFAULT '[]',
			created_by TEXT NOT NULL,
			user_id TEXT,
			fill_threshold DOUBLE PRECISION,
			battery_threshold DOUBLE PRECISION,
			temp_threshold DOUBLE PRECISION,
			fill_level DOUBLE PRECISION,
			battery_level DOUBLE PRECISION,
			temperature DOUBLE PRECISION,
			humidity DOUBLE PRECISION,
			air_quality DOUBLE PRECISION,
			odour_level DOUBLE PRECISION,
			last_update BIGINT,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,

		// smartbin_id is not a foreign key: the cascade is done explicitly in DeleteSmartBin
		`CREATE TABLE IF NOT EXISTS compartments (
			id TEXT PRIMARY KEY,
			smartbin_id TEXT NOT NULL,
			identifier TEXT NOT NULL,
			waste_type TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			capacity DOUBLE PRECISION NOT NULL DEFAULT 0,
			bin_height DOUBLE PRECISION NOT NULL DEFAULT 0,
			status TEXT NOT NULL CHECK(status IN ('active', 'inactive', 'maintenance')),
			device_id TEXT,
			sensors TEXT NOT NULL DEFAULT '[]',
			created_by TEXT NOT NULL,
			user_id TEXT,
			fill_threshold DOUBLE PRECISION,
			battery_threshold DOUBLE PRECISION,
			temp_threshold DOUBLE PRECISION,
			fill_level DOUBLE PRECISION,
			battery_level DOUBLE PRECISION,
			temperature DOUBLE PRECISION,
			humidity DOUBLE PRECISION,
			air_quality DOUBLE PRECISION,
			odour_level DOUBLE PRECISION,
			last_update BIGINT,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS single_bins (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			waste_type TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			capacity DOUBLE PRECISION NOT NULL DEFAULT 0,
			bin_height DOUBLE PRECISION NOT NULL DEFAULT 0,
			status TEXT NOT NULL CHECK(status IN ('active', 'inactive', 'maintenance')),
			device_id TEXT,
			sensors TEXT NOT NULL DEFAULT '[]',
			created_by TEXT NOT NULL,
			user_id TEXT,
			fill_threshold DOUBLE PRECISION,
			battery_threshold DOUBLE PRECISION,
			temp_threshold DOUBLE PRECISION,
			fill_level DOUBLE PRECISION,
			battery_level DOUBLE PRECISION,
			temperature DOUBLE PRECISION,
			humidity DOUBLE PRECISION,
			air_quality DOUBLE PRECISION,
			odour_level DOUBLE PRECISION,
			last_update BIGINT,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			entity_id TEXT NOT NULL,
			entity_type TEXT NOT NULL CHECK(entity_type IN ('smartbin', 'compartment', 'singlebin')),
			bin_id TEXT NOT NULL,
			compartment_id TEXT,
			bin_name TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			severity TEXT NOT NULL CHECK(severity IN ('critical', 'high', 'medium', 'info')),
			current_value DOUBLE PRECISION NOT NULL,
			threshold DOUBLE PRECISION NOT NULL,
			unit TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL,
			acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
			acknowledged_at BIGINT,
			acknowledged_by TEXT,
			created_by TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android', 'web')),
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS iot_devices (
			device_id TEXT PRIMARY KEY,
			application_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			last_seen BIGINT,
			created_at BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS sensor_samples (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			distance DOUBLE PRECISION,
			battery DOUBLE PRECISION,
			temperature DOUBLE PRECISION,
			humidity DOUBLE PRECISION,
			air_quality DOUBLE PRECISION,
			odour_level DOUBLE PRECISION,
			timestamp BIGINT NOT NULL
		)`,

		// Create indexes
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_smart_bins_created_by ON smart_bins(created_by)`,
		`CREATE INDEX IF NOT EXISTS idx_single_bins_created_by ON single_bins(created_by)`,
		`CREATE INDEX IF NOT EXISTS idx_compartments_smartbin_id ON compartments(smartbin_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_compartments_identifier ON compartments(smartbin_id, identifier)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_created_by ON alerts(created_by)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts(created_at)`,
		// At most one unacknowledged alert per (entity, alert_type)
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_open ON alerts(entity_id, alert_type) WHERE acknowledged = FALSE`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_iot_devices_application_id ON iot_devices(application_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sensor_samples_device_ts ON sensor_samples(device_id, timestamp)`,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return errors.Wrapf(err, "migration %d failed", i)
		}
	}

	return nil
}
