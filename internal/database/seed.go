package database

import (
	"context"

	"smartbin-backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var defaultPlans = []models.SubscriptionPlan{
	{ID: "basic", Name: "Basic", PriceCents: 0, MaxBins: 5, Features: models.StringList{"fill_level", "battery_level", "email_alerts"}},
	{ID: "pro", Name: "Pro", PriceCents: 2900, MaxBins: 50, Features: models.StringList{"fill_level", "battery_level", "temperature", "push_alerts", "sms_alerts"}},
	{ID: "enterprise", Name: "Enterprise", PriceCents: 9900, MaxBins: 0, Features: models.StringList{"all_sensors", "push_alerts", "sms_alerts", "whatsapp_alerts", "priority_support"}},
}

func SeedSubscriptionPlans(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM subscription_plans"); err != nil {
		return errors.Wrap(err, "failed to count subscription plans")
	}

	if count > 0 {
		log.Println("✓ Subscription plans already seeded, skipping...")
		return nil
	}

	for _, plan := range defaultPlans {
		_, err := db.NamedExec(`
			INSERT INTO subscription_plans (id, name, price_cents, max_bins, features)
			VALUES (:id, :name, :price_cents, :max_bins, :features)
		`, plan)
		if err != nil {
			return errors.Wrapf(err, "failed to seed plan %s", plan.ID)
		}
		log.Printf("  ✓ Created plan: %s", plan.Name)
	}
	return nil
}

// SeedAdmin creates the admin account when email and password are both set
// and no user with that email exists yet.
func SeedAdmin(s *Store, email, password string) error {
	if email == "" || password == "" {
		log.Println("⚠️  ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	ctx := context.Background()
	if _, err := s.GetUserByEmail(ctx, email); err == nil {
		log.Println("✓ Admin already seeded, skipping...")
		return nil
	} else if err != ErrNotFound {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash admin password")
	}

	admin := &models.User{
		Email:    email,
		Password: string(hashed),
		Name:     "Admin User",
		Role:     models.RoleAdmin,
		NotificationPreferences: models.NotificationPreferences{
			NotifyEmail: true,
			NotifyPush:  true,
		},
	}
	if err := s.CreateUser(ctx, admin); err != nil {
		return err
	}

	log.Printf("  ✓ Created admin: %s", admin.Email)
	return nil
}
