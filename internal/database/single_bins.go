package database

import (
	"context"
	"database/sql"
	"time"

	"smartbin-backend/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const singleBinColumns = `id, waste_type, ` + attributeColumns + `, created_at, updated_at`

func (s *Store) CreateSingleBin(ctx context.Context, wasteType string, attrs models.BinAttributes) (*models.SingleBin, error) {
	now := time.Now().Unix()
	bin := models.SingleBin{
		ID:            uuid.New().String(),
		BinAttributes: attrs,
		WasteType:     wasteType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if bin.Status == "" {
		bin.Status = models.StatusActive
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO single_bins (`+singleBinColumns+`)
		VALUES (:id, :waste_type, `+attributeValues+`, :created_at, :updated_at)
	`, bin)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create single bin")
	}
	return &bin, nil
}

func (s *Store) GetSingleBin(ctx context.Context, scope models.OwnerScope, id string) (*models.SingleBin, error) {
	clause, args := scopeClause(scope, "created_by")
	var bin models.SingleBin
	err := s.db.GetContext(ctx, &bin, s.q(`SELECT `+singleBinColumns+` FROM single_bins WHERE id = ?`+clause),
		append([]interface{}{id}, args...)...)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get single bin %s", id)
	}
	return &bin, nil
}

func (s *Store) ListSingleBins(ctx context.Context, scope models.OwnerScope) ([]models.SingleBin, error) {
	clause, args := scopeClause(scope, "created_by")
	bins := []models.SingleBin{}
	err := s.db.SelectContext(ctx, &bins, s.q(`
		SELECT `+singleBinColumns+` FROM single_bins
		WHERE 1=1`+clause+`
		ORDER BY created_at ASC, name ASC
	`), args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list single bins")
	}
	return bins, nil
}

func (s *Store) UpdateSingleBin(ctx context.Context, scope models.OwnerScope, id string, req *models.UpdateBinRequest) (*models.SingleBin, error) {
	bin, err := s.GetSingleBin(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	req.Apply(&bin.BinAttributes)
	if req.WasteType != nil {
		bin.WasteType = *req.WasteType
	}
	bin.UpdatedAt = time.Now().Unix()

	_, err = s.db.NamedExecContext(ctx, `
		UPDATE single_bins SET `+attributeAssignments+`, waste_type = :waste_type, updated_at = :updated_at
		WHERE id = :id
	`, bin)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update single bin %s", id)
	}
	return bin, nil
}

// DeleteSingleBin removes exactly one record. Nothing cascades.
func (s *Store) DeleteSingleBin(ctx context.Context, scope models.OwnerScope, id string) error {
	clause, args := scopeClause(scope, "created_by")
	result, err := s.db.ExecContext(ctx, s.q(`DELETE FROM single_bins WHERE id = ?`+clause),
		append([]interface{}{id}, args...)...)
	if err != nil {
		return errors.Wrapf(err, "failed to delete single bin %s", id)
	}
	if rows, err := result.RowsAffected(); err != nil || rows == 0 {
		return ErrNotFound
	}
	return nil
}
