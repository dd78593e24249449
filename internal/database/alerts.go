package database

import (
	"context"
	"database/sql"
	"time"

	"smartbin-backend/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const alertColumns = `id, entity_id, entity_type, bin_id, compartment_id, bin_name, alert_type,
	severity, current_value, threshold, unit, message, acknowledged, acknowledged_at,
	acknowledged_by, created_by, created_at, updated_at`

// CreateAlert inserts a new unacknowledged alert. If one already exists for
// the same (entity, alert_type) the insert is dropped and ErrAlertExists is
// returned, so overlapping evaluations cannot duplicate.
func (s *Store) CreateAlert(ctx context.Context, alert *models.Alert) error {
	now := time.Now().Unix()
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.CreatedAt == 0 {
		alert.CreatedAt = now
	}
	alert.UpdatedAt = alert.CreatedAt
	alert.Acknowledged = false
	alert.AcknowledgedAt = nil
	alert.AcknowledgedBy = nil

	result, err := s.db.NamedExecContext(ctx, `
		INSERT INTO alerts (`+alertColumns+`)
		VALUES (:id, :entity_id, :entity_type, :bin_id, :compartment_id, :bin_name, :alert_type,
			:severity, :current_value, :threshold, :unit, :message, :acknowledged, :acknowledged_at,
			:acknowledged_by, :created_by, :created_at, :updated_at)
		ON CONFLICT DO NOTHING
	`, alert)
	if err != nil {
		return errors.Wrap(err, "failed to create alert")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if rows == 0 {
		return ErrAlertExists
	}
	return nil
}

// FindUnacknowledgedAlert returns the open alert for (entityID, alertType),
// or nil when there is none.
func (s *Store) FindUnacknowledgedAlert(ctx context.Context, entityID, alertType string) (*models.Alert, error) {
	var alert models.Alert
	err := s.db.GetContext(ctx, &alert, s.q(`
		SELECT `+alertColumns+` FROM alerts
		WHERE entity_id = ? AND alert_type = ? AND acknowledged = ?
	`), entityID, alertType, false)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find open %s alert for %s", alertType, entityID)
	}
	return &alert, nil
}

// RefreshAlert updates the live reading on an open alert without creating a new one.
func (s *Store) RefreshAlert(ctx context.Context, id string, severity string, value float64, message string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE alerts SET severity = ?, current_value = ?, message = ?, updated_at = ?
		WHERE id = ? AND acknowledged = ?
	`), severity, value, message, time.Now().Unix(), id, false)
	if err != nil {
		return errors.Wrapf(err, "failed to refresh alert %s", id)
	}
	return nil
}

func (s *Store) GetAlert(ctx context.Context, scope models.OwnerScope, id string) (*models.Alert, error) {
	clause, args := scopeClause(scope, "created_by")
	var alert models.Alert
	err := s.db.GetContext(ctx, &alert, s.q(`SELECT `+alertColumns+` FROM alerts WHERE id = ?`+clause),
		append([]interface{}{id}, args...)...)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get alert %s", id)
	}
	return &alert, nil
}

func (s *Store) ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error) {
	clause, args := scopeClause(filter.Scope, "created_by")
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE 1=1` + clause
	if filter.Acknowledged != nil {
		query += ` AND acknowledged = ?`
		args = append(args, *filter.Acknowledged)
	}
	if filter.EntityID != "" {
		query += ` AND entity_id = ?`
		args = append(args, filter.EntityID)
	}
	query += ` ORDER BY created_at DESC, id ASC`

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	alerts := []models.Alert{}
	if err := s.db.SelectContext(ctx, &alerts, s.q(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to list alerts")
	}
	return alerts, nil
}

// AcknowledgeAlert marks one alert as reviewed. The record is kept for audit.
// Acknowledging an already acknowledged alert is a no-op returning the record.
func (s *Store) AcknowledgeAlert(ctx context.Context, scope models.OwnerScope, id, by string) (*models.Alert, error) {
	alert, err := s.GetAlert(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if alert.Acknowledged {
		return alert, nil
	}

	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, s.q(`
		UPDATE alerts SET acknowledged = ?, acknowledged_at = ?, acknowledged_by = ?, updated_at = ?
		WHERE id = ?
	`), true, now, by, now, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to acknowledge alert %s", id)
	}

	alert.Acknowledged = true
	alert.AcknowledgedAt = &now
	alert.AcknowledgedBy = &by
	alert.UpdatedAt = now
	return alert, nil
}
