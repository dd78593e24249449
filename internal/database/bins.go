package database

import (
	"context"
	"database/sql"
	"time"

	"smartbin-backend/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// attributeColumns are the columns backing models.BinAttributes.
const attributeColumns = `name, location, capacity, bin_height, status, device_id, sensors,
	created_by, user_id, fill_threshold, battery_threshold, temp_threshold,
	fill_level, battery_level, temperature, humidity, air_quality, odour_level, last_update`

const attributeValues = `:name, :location, :capacity, :bin_height, :status, :device_id, :sensors,
	:created_by, :user_id, :fill_threshold, :battery_threshold, :temp_threshold,
	:fill_level, :battery_level, :temperature, :humidity, :air_quality, :odour_level, :last_update`

const attributeAssignments = `name = :name, location = :location, capacity = :capacity,
	bin_height = :bin_height, status = :status, device_id = :device_id, sensors = :sensors,
	fill_threshold = :fill_threshold, battery_threshold = :battery_threshold,
	temp_threshold = :temp_threshold`

const smartBinColumns = `id, ` + attributeColumns + `, created_at, updated_at`

// scopeClause returns the owner filter for a read path.
func scopeClause(scope models.OwnerScope, column string) (string, []interface{}) {
	if scope.All {
		return "", nil
	}
	return " AND " + column + " = ?", []interface{}{scope.Email}
}

func (s *Store) CreateSmartBin(ctx context.Context, attrs models.BinAttributes) (*models.SmartBin, error) {
	now := time.Now().Unix()
	bin := models.SmartBin{
		ID:            uuid.New().String(),
		BinAttributes: attrs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if bin.Status == "" {
		bin.Status = models.StatusActive
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO smart_bins (`+smartBinColumns+`)
		VALUES (:id, `+attributeValues+`, :created_at, :updated_at)
	`, bin)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create smart bin")
	}
	return &bin, nil
}

func (s *Store) GetSmartBin(ctx context.Context, scope models.OwnerScope, id string) (*models.SmartBin, error) {
	clause, args := scopeClause(scope, "created_by")
	var bin models.SmartBin
	err := s.db.GetContext(ctx, &bin, s.q(`SELECT `+smartBinColumns+` FROM smart_bins WHERE id = ?`+clause),
		append([]interface{}{id}, args...)...)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get smart bin %s", id)
	}
	return &bin, nil
}

func (s *Store) ListSmartBins(ctx context.Context, scope models.OwnerScope) ([]models.SmartBin, error) {
	clause, args := scopeClause(scope, "created_by")
	bins := []models.SmartBin{}
	err := s.db.SelectContext(ctx, &bins, s.q(`
		SELECT `+smartBinColumns+` FROM smart_bins
		WHERE 1=1`+clause+`
		ORDER BY created_at ASC, name ASC
	`), args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list smart bins")
	}
	return bins, nil
}

func (s *Store) UpdateSmartBin(ctx context.Context, scope models.OwnerScope, id string, req *models.UpdateBinRequest) (*models.SmartBin, error) {
	bin, err := s.GetSmartBin(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	req.Apply(&bin.BinAttributes)
	bin.UpdatedAt = time.Now().Unix()

	_, err = s.db.NamedExecContext(ctx, `
		UPDATE smart_bins SET `+attributeAssignments+`, updated_at = :updated_at
		WHERE id = :id
	`, bin)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update smart bin %s", id)
	}
	return bin, nil
}

// DeleteSmartBin removes the bin and every compartment referencing it.
// It returns the number of compartments removed.
func (s *Store) DeleteSmartBin(ctx context.Context, scope models.OwnerScope, id string) (int64, error) {
	clause, args := scopeClause(scope, "created_by")

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM smart_bins WHERE id = ?`+clause),
		append([]interface{}{id}, args...)...)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to delete smart bin %s", id)
	}
	if rows, err := result.RowsAffected(); err != nil || rows == 0 {
		return 0, ErrNotFound
	}

	result, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM compartments WHERE smartbin_id = ?`), id)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to delete compartments of smart bin %s", id)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count deleted compartments")
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit transaction")
	}
	return removed, nil
}

// UpdateSensorSnapshot caches the latest reading on a bin or compartment.
func (s *Store) UpdateSensorSnapshot(ctx context.Context, kind models.EntityType, id string, snap models.SensorSnapshot) error {
	table, err := entityTable(kind)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, s.q(`
		UPDATE `+table+`
		SET fill_level = ?, battery_level = ?, temperature = ?, humidity = ?,
		    air_quality = ?, odour_level = ?, last_update = ?, updated_at = ?
		WHERE id = ?
	`), snap.FillLevel, snap.BatteryLevel, snap.Temperature, snap.Humidity,
		snap.AirQuality, snap.OdourLevel, snap.LastUpdate, time.Now().Unix(), id)
	if err != nil {
		return errors.Wrapf(err, "failed to update sensor snapshot of %s %s", kind, id)
	}
	return nil
}

func entityTable(kind models.EntityType) (string, error) {
	switch kind {
	case models.EntitySmartBin:
		return "smart_bins", nil
	case models.EntityCompartment:
		return "compartments", nil
	case models.EntitySingleBin:
		return "single_bins", nil
	}
	return "", errors.Errorf("unknown entity type %q", kind)
}
