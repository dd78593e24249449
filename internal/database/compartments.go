package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"smartbin-backend/internal/helpers"
	"smartbin-backend/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const compartmentColumns = `id, smartbin_id, identifier, waste_type, ` + attributeColumns + `, created_at, updated_at`

// CreateCompartment stores a compartment under its SmartBin. When identifier
// is empty one is generated from the bin name and waste type, skipping every
// identifier already used under that bin. A generated identifier taken by a
// concurrent create is regenerated once before ErrConflict is returned.
func (s *Store) CreateCompartment(ctx context.Context, scope models.OwnerScope, smartBinID, identifier, wasteType string, attrs models.BinAttributes) (*models.Compartment, error) {
	parent, err := s.GetSmartBin(ctx, scope, smartBinID)
	if err != nil {
		return nil, err
	}

	if attrs.Location == "" {
		attrs.Location = parent.Location
	}
	if attrs.CreatedBy == "" {
		attrs.CreatedBy = parent.CreatedBy
	}
	if attrs.Status == "" {
		attrs.Status = models.StatusActive
	}

	identifier = strings.TrimSpace(identifier)
	generate := identifier == ""

	for attempt := 0; ; attempt++ {
		existing := []string{}
		if err := s.db.SelectContext(ctx, &existing,
			s.q(`SELECT identifier FROM compartments WHERE smartbin_id = ?`), smartBinID); err != nil {
			return nil, errors.Wrap(err, "failed to list compartment identifiers")
		}

		if generate {
			identifier = helpers.GenerateCompartmentIdentifier(parent.Name, wasteType, existing)
		} else {
			for _, id := range existing {
				if strings.EqualFold(id, identifier) {
					return nil, errors.Wrapf(ErrConflict, "compartment %s", identifier)
				}
			}
		}

		now := time.Now().Unix()
		attrs.Name = identifier
		c := models.Compartment{
			ID:            uuid.New().String(),
			SmartBinID:    smartBinID,
			Identifier:    identifier,
			WasteType:     wasteType,
			BinAttributes: attrs,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		err := s.insertCompartment(ctx, &c)
		if errors.Is(err, ErrConflict) && generate && attempt == 0 {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &c, nil
	}
}

func (s *Store) insertCompartment(ctx context.Context, c *models.Compartment) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO compartments (`+compartmentColumns+`)
		VALUES (:id, :smartbin_id, :identifier, :waste_type, `+attributeValues+`, :created_at, :updated_at)
	`, c)
	if isUniqueViolation(err) {
		return errors.Wrapf(ErrConflict, "compartment %s", c.Identifier)
	}
	if err != nil {
		return errors.Wrap(err, "failed to create compartment")
	}
	return nil
}

func (s *Store) GetCompartment(ctx context.Context, scope models.OwnerScope, id string) (*models.Compartment, error) {
	clause, args := scopeClause(scope, "created_by")
	var c models.Compartment
	err := s.db.GetContext(ctx, &c, s.q(`SELECT `+compartmentColumns+` FROM compartments WHERE id = ?`+clause),
		append([]interface{}{id}, args...)...)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get compartment %s", id)
	}
	return &c, nil
}

// ListCompartments returns compartments visible in scope, optionally for one SmartBin.
func (s *Store) ListCompartments(ctx context.Context, scope models.OwnerScope, smartBinID string) ([]models.Compartment, error) {
	clause, args := scopeClause(scope, "created_by")
	query := `SELECT ` + compartmentColumns + ` FROM compartments WHERE 1=1` + clause
	if smartBinID != "" {
		query += ` AND smartbin_id = ?`
		args = append(args, smartBinID)
	}
	query += ` ORDER BY smartbin_id ASC, identifier ASC`

	compartments := []models.Compartment{}
	if err := s.db.SelectContext(ctx, &compartments, s.q(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to list compartments")
	}
	return compartments, nil
}

func (s *Store) UpdateCompartment(ctx context.Context, scope models.OwnerScope, id string, req *models.UpdateBinRequest) (*models.Compartment, error) {
	c, err := s.GetCompartment(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	req.Apply(&c.BinAttributes)
	if req.WasteType != nil {
		c.WasteType = *req.WasteType
	}
	// The name of a compartment is its identifier.
	c.Name = c.Identifier
	c.UpdatedAt = time.Now().Unix()

	_, err = s.db.NamedExecContext(ctx, `
		UPDATE compartments SET `+attributeAssignments+`, waste_type = :waste_type, updated_at = :updated_at
		WHERE id = :id
	`, c)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update compartment %s", id)
	}
	return c, nil
}

func (s *Store) DeleteCompartment(ctx context.Context, scope models.OwnerScope, id string) error {
	clause, args := scopeClause(scope, "created_by")
	result, err := s.db.ExecContext(ctx, s.q(`DELETE FROM compartments WHERE id = ?`+clause),
		append([]interface{}{id}, args...)...)
	if err != nil {
		return errors.Wrapf(err, "failed to delete compartment %s", id)
	}
	if rows, err := result.RowsAffected(); err != nil || rows == 0 {
		return ErrNotFound
	}
	return nil
}
