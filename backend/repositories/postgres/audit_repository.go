package postgres

import (
	"context"
	"fmt"

	"github.com/avaolo/knowledge-plane/backend/models"
	"github.com/avaolo/knowledge-plane/backend/repositories"
	"go.uber.org/zap"
)

// AuditRepository implements the repositories.AuditRepository interface
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new query audit record
func (r *AuditRepository) Insert(ctx context.Context, audit *models.QueryAudit) error {
	query := `
		INSERT INTO query_audits (
			id, timestamp, query_text, farmer_id, country_code,
			context_hash, farmer_items, country_items, global_items
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		audit.ID,
		audit.Timestamp,
		audit.QueryText,
		audit.FarmerID,
		audit.CountryCode,
		audit.ContextHash,
		audit.FarmerItems,
		audit.CountryItems,
		audit.GlobalItems,
	)
	if err != nil {
		return fmt.Errorf("failed to insert query audit: %w", err)
	}

	r.logger.Debug("query audit inserted",
		zap.String("id", audit.ID.String()),
		zap.String("context_hash", audit.ContextHash))
	return nil
}
