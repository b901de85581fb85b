package hierarchy

import (
	"github.com/avaolo/knowledge-plane/backend/models"
	"go.uber.org/zap"
)

// Validator is the single privacy enforcement point. Every item returned
// by every source passes through Validate before it can enter a result.
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a privacy validator.
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate reports whether an item's tier is authorized by the producing
// source's capability flags. Farmer and country tier items require the
// matching flag; global items are never rejected here, since
// over-permissive global data carries no farmer-privacy risk. A failure
// is logged as a privacy violation naming the source.
func (v *Validator) Validate(item models.InformationItem, source models.InformationSource) bool {
	switch item.Tier {
	case models.TierFarmer:
		if !source.Capabilities.FarmerData {
			v.logViolation(item, source)
			return false
		}
	case models.TierCountry:
		if !source.Capabilities.CountryData {
			v.logViolation(item, source)
			return false
		}
	}
	return true
}

func (v *Validator) logViolation(item models.InformationItem, source models.InformationSource) {
	v.logger.Error("privacy violation: source returned item at unauthorized tier",
		zap.String("source_id", source.ID),
		zap.String("source_name", source.Name),
		zap.String("source_type", string(source.Kind)),
		zap.String("relevance", string(item.Tier)))
}
