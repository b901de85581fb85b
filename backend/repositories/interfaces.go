// Package repositories defines the data access interfaces for the
// knowledge plane. Implementations live in subpackages (postgres).
package repositories

import (
	"context"

	"github.com/avaolo/knowledge-plane/backend/models"
)

// FarmerRepository provides access to the relational farmer-record
// store: per-farmer field data and country-scoped advisories.
type FarmerRepository interface {
	// SearchRecords returns a farmer's field records matching the query
	// text, most recently updated first.
	SearchRecords(ctx context.Context, farmerID int64, query string, limit int) ([]models.FarmerRecord, error)

	// SearchAdvisories returns country-scoped agronomy advisories
	// matching the query text.
	SearchAdvisories(ctx context.Context, countryCode, query string, limit int) ([]models.CountryAdvisory, error)
}

// AuditRepository persists the per-query transparency trail.
type AuditRepository interface {
	Insert(ctx context.Context, audit *models.QueryAudit) error
}
