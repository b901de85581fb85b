package postgres

import (
	"context"
	"fmt"

	"github.com/avaolo/knowledge-plane/backend/models"
	"github.com/avaolo/knowledge-plane/backend/repositories"
	"go.uber.org/zap"
)

// FarmerRepository implements the repositories.FarmerRepository interface
type FarmerRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewFarmerRepository creates a new farmer record repository
func NewFarmerRepository(db *DB, logger *zap.Logger) repositories.FarmerRepository {
	return &FarmerRepository{
		db:     db,
		logger: logger,
	}
}

// SearchRecords returns a farmer's field records matching the query text
func (r *FarmerRepository) SearchRecords(ctx context.Context, farmerID int64, query string, limit int) ([]models.FarmerRecord, error) {
	stmt := `
		SELECT farmer_id, field_name, crop, notes, updated_at
		FROM farmer_fields
		WHERE farmer_id = $1
		  AND (crop ILIKE '%' || $2 || '%' OR notes ILIKE '%' || $2 || '%' OR field_name ILIKE '%' || $2 || '%')
		ORDER BY updated_at DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, stmt, farmerID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search farmer records: %w", err)
	}
	defer rows.Close()

	var records []models.FarmerRecord
	for rows.Next() {
		var rec models.FarmerRecord
		if err := rows.Scan(&rec.FarmerID, &rec.FieldName, &rec.Crop, &rec.Notes, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan farmer record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate farmer records: %w", err)
	}

	r.logger.Debug("farmer records searched",
		zap.Int64("farmer_id", farmerID),
		zap.Int("count", len(records)))
	return records, nil
}

// SearchAdvisories returns country-scoped advisories matching the query text
func (r *FarmerRepository) SearchAdvisories(ctx context.Context, countryCode, query string, limit int) ([]models.CountryAdvisory, error) {
	stmt := `
		SELECT country_code, title, body, language, published_at
		FROM country_advisories
		WHERE country_code = $1
		  AND (title ILIKE '%' || $2 || '%' OR body ILIKE '%' || $2 || '%')
		ORDER BY published_at DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, stmt, countryCode, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search country advisories: %w", err)
	}
	defer rows.Close()

	var advisories []models.CountryAdvisory
	for rows.Next() {
		var adv models.CountryAdvisory
		if err := rows.Scan(&adv.CountryCode, &adv.Title, &adv.Body, &adv.Language, &adv.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan country advisory: %w", err)
		}
		advisories = append(advisories, adv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate country advisories: %w", err)
	}

	return advisories, nil
}
