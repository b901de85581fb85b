package models

import (
	"time"

	"github.com/google/uuid"
)

// QueryAudit is the transparency-trail record emitted once per completed
// information query.
type QueryAudit struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	QueryText    string    `json:"query" db:"query_text"`
	FarmerID     *int64    `json:"farmer_id,omitempty" db:"farmer_id"`
	CountryCode  string    `json:"country" db:"country_code"`
	ContextHash  string    `json:"context_hash" db:"context_hash"`
	FarmerItems  int       `json:"farmer_items" db:"farmer_items"`
	CountryItems int       `json:"country_items" db:"country_items"`
	GlobalItems  int       `json:"global_items" db:"global_items"`
}

// TableName returns the table name for the QueryAudit model
func (QueryAudit) TableName() string {
	return "query_audits"
}

// NewQueryAudit creates an audit record for a completed query.
func NewQueryAudit(result *InformationResult) *QueryAudit {
	a := &QueryAudit{
		ID:           uuid.New(),
		Timestamp:    time.Now().UTC(),
		ContextHash:  result.Metadata.ContextHash,
		FarmerItems:  len(result.FarmerItems),
		CountryItems: len(result.CountryItems),
		GlobalItems:  len(result.GlobalItems),
	}
	if result.Query != nil {
		a.QueryText = result.Query.Text
		if result.Query.Context != nil {
			a.FarmerID = result.Query.Context.FarmerID
			a.CountryCode = result.Query.Context.CountryCode
		}
	}
	return a
}

// TotalItems returns the item count across all three tiers.
func (a *QueryAudit) TotalItems() int {
	return a.FarmerItems + a.CountryItems + a.GlobalItems
}
