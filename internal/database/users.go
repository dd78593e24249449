package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"smartbin-backend/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const userColumns = `id, email, password, name, role, application_id, subscription_plan,
	notify_email, notify_sms, notify_whatsapp, notify_push, notification_email, phone,
	whatsapp_number, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().Unix()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.SubscriptionPlan == "" {
		user.SubscriptionPlan = "basic"
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.GetUserByEmail(ctx, user.Email); err == nil {
		return errors.Wrapf(ErrConflict, "user %s", user.Email)
	} else if err != ErrNotFound {
		return err
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :email, :password, :name, :role, :application_id, :subscription_plan,
			:notify_email, :notify_sms, :notify_whatsapp, :notify_push, :notification_email, :phone,
			:whatsapp_number, :created_at, :updated_at)
	`, user)
	if isUniqueViolation(err) {
		return errors.Wrapf(ErrConflict, "user %s", user.Email)
	}
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, s.q(`SELECT `+userColumns+` FROM users WHERE email = ?`),
		strings.ToLower(strings.TrimSpace(email)))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user by email")
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, s.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user %s", id)
	}
	return &user, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(user)
	user.UpdatedAt = time.Now().Unix()

	_, err = s.db.NamedExecContext(ctx, `
		UPDATE users SET name = :name, application_id = :application_id,
			subscription_plan = :subscription_plan, notify_email = :notify_email,
			notify_sms = :notify_sms, notify_whatsapp = :notify_whatsapp, notify_push = :notify_push,
			notification_email = :notification_email, phone = :phone,
			whatsapp_number = :whatsapp_number, updated_at = :updated_at
		WHERE id = :id
	`, user)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update user %s", id)
	}
	return user, nil
}

func (s *Store) ListSubscriptionPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	plans := []models.SubscriptionPlan{}
	err := s.db.SelectContext(ctx, &plans, `
		SELECT id, name, price_cents, max_bins, features
		FROM subscription_plans
		ORDER BY price_cents ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list subscription plans")
	}
	return plans, nil
}

// UpsertFCMToken registers token for userID, moving it over if another user held it.
func (s *Store) UpsertFCMToken(ctx context.Context, userID, token, deviceType string) error {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO fcm_tokens (id, user_id, token, device_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (token) DO UPDATE
		SET user_id = excluded.user_id, device_type = excluded.device_type, updated_at = excluded.updated_at
	`), uuid.New().String(), userID, token, deviceType, now, now)
	if err != nil {
		return errors.Wrap(err, "failed to upsert FCM token")
	}
	return nil
}

func (s *Store) ListFCMTokens(ctx context.Context, userID string) ([]string, error) {
	tokens := []string{}
	err := s.db.SelectContext(ctx, &tokens,
		s.q(`SELECT token FROM fcm_tokens WHERE user_id = ? ORDER BY updated_at DESC`), userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list FCM tokens")
	}
	return tokens, nil
}
