package hierarchy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/avaolo/knowledge-plane/backend/models"
	"go.uber.org/zap"
)

// Auditor receives one record per completed query for persistence.
type Auditor interface {
	RecordQuery(audit *models.QueryAudit) error
}

// AuditorFunc adapts a function to the Auditor interface.
type AuditorFunc func(audit *models.QueryAudit) error

// RecordQuery calls f.
func (f AuditorFunc) RecordQuery(audit *models.QueryAudit) error {
	return f(audit)
}

// Assembler merges validated tier lists into an InformationResult,
// stamps metadata, and emits the audit trail entry.
type Assembler struct {
	auditor Auditor
	logger  *zap.Logger
}

// NewAssembler creates a result assembler. The auditor may be nil, in
// which case only the structured log entry is emitted.
func NewAssembler(auditor Auditor, logger *zap.Logger) *Assembler {
	return &Assembler{auditor: auditor, logger: logger}
}

// Assemble builds the final result for a query and emits exactly one
// audit entry, regardless of how many tiers were empty.
func (a *Assembler) Assemble(query *models.InformationQuery, farmer, country, global []models.InformationItem) *models.InformationResult {
	result := &models.InformationResult{
		Query:        query,
		FarmerItems:  farmer,
		CountryItems: country,
		GlobalItems:  global,
	}

	sourcesUsed := make([]string, 0, 3)
	if len(farmer) > 0 {
		sourcesUsed = append(sourcesUsed, models.TierFarmer.Label())
	}
	if len(country) > 0 {
		sourcesUsed = append(sourcesUsed, models.TierCountry.Label())
	}
	if len(global) > 0 {
		sourcesUsed = append(sourcesUsed, models.TierGlobal.Label())
	}

	result.Metadata = models.ResultMetadata{
		QueryTimestamp: time.Now().UTC().Format(time.RFC3339),
		SourcesUsed:    sourcesUsed,
		TotalItems:     len(farmer) + len(country) + len(global),
		ContextHash:    ContextFingerprint(query.Context),
	}

	a.logQuery(result)
	return result
}

// ContextFingerprint returns a stable one-way hash of the caller context:
// the first 16 hex characters of SHA-256 over
// "whatsapp_number:country_code:preferred_language". Used only for log
// correlation, never for lookup.
func ContextFingerprint(lctx *models.LocalizationContext) string {
	if lctx == nil {
		return ""
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s",
		lctx.WhatsAppNumber, lctx.CountryCode, lctx.PreferredLanguage)))
	return hex.EncodeToString(sum[:])[:16]
}

// logQuery emits the transparency trail: one structured entry per
// completed query plus one persistent audit record.
func (a *Assembler) logQuery(result *models.InformationResult) {
	audit := models.NewQueryAudit(result)

	fields := []zap.Field{
		zap.Time("timestamp", audit.Timestamp),
		zap.String("query", audit.QueryText),
		zap.String("country", audit.CountryCode),
		zap.String("context_hash", audit.ContextHash),
		zap.Int("farmer_items", audit.FarmerItems),
		zap.Int("country_items", audit.CountryItems),
		zap.Int("global_items", audit.GlobalItems),
	}
	if audit.FarmerID != nil {
		fields = append(fields, zap.Int64("farmer_id", *audit.FarmerID))
	}
	a.logger.Info("information query completed", fields...)

	if a.auditor != nil {
		if err := a.auditor.RecordQuery(audit); err != nil {
			a.logger.Warn("failed to record query audit",
				zap.Error(err),
				zap.String("context_hash", audit.ContextHash))
		}
	}
}
