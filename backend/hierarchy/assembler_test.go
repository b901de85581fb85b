package hierarchy

import (
	"errors"
	"regexp"
	"testing"

	"github.com/avaolo/knowledge-plane/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFingerprint(t *testing.T) {
	lctx := &models.LocalizationContext{
		WhatsAppNumber:    "+359123456789",
		CountryCode:       "BG",
		PreferredLanguage: "bg",
	}

	first := ContextFingerprint(lctx)
	second := ContextFingerprint(lctx)

	assert.Equal(t, first, second, "fingerprint must be stable for the same context")
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), first)

	other := ContextFingerprint(&models.LocalizationContext{
		WhatsAppNumber:    "+359987654321",
		CountryCode:       "BG",
		PreferredLanguage: "bg",
	})
	assert.NotEqual(t, first, other, "distinct contexts must not collide")

	assert.Empty(t, ContextFingerprint(nil))
}

func TestAssembler_MetadataAndSourcesUsed(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	assembler := NewAssembler(nil, logger)

	query := models.NewInformationQuery("harvest timing", &models.LocalizationContext{
		WhatsAppNumber: "+359123456789",
		CountryCode:    "BG",
	})
	farmer := []models.InformationItem{{Content: "f", Tier: models.TierFarmer}}
	global := []models.InformationItem{
		{Content: "g1", Tier: models.TierGlobal},
		{Content: "g2", Tier: models.TierGlobal},
	}

	result := assembler.Assemble(query, farmer, nil, global)

	assert.Equal(t, []string{"farmer_specific", "global"}, result.Metadata.SourcesUsed)
	assert.Equal(t, 3, result.Metadata.TotalItems)
	assert.NotEmpty(t, result.Metadata.QueryTimestamp)
	assert.Len(t, result.Metadata.ContextHash, 16)
	assert.Empty(t, result.CountryItems)
}

func TestAssembler_EmitsExactlyOneAuditEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	var recorded []*models.QueryAudit
	assembler := NewAssembler(AuditorFunc(func(audit *models.QueryAudit) error {
		recorded = append(recorded, audit)
		return nil
	}), logger)

	farmerID := int64(42)
	query := models.NewInformationQuery("soil ph", &models.LocalizationContext{
		WhatsAppNumber: "+359123456789",
		CountryCode:    "BG",
		FarmerID:       &farmerID,
	})

	assembler.Assemble(query, nil, nil, nil)

	require.Len(t, recorded, 1)
	audit := recorded[0]
	assert.Equal(t, "soil ph", audit.QueryText)
	assert.Equal(t, "BG", audit.CountryCode)
	require.NotNil(t, audit.FarmerID)
	assert.Equal(t, int64(42), *audit.FarmerID)
	assert.Equal(t, 0, audit.TotalItems())

	entries := logs.FilterMessage("information query completed").All()
	assert.Len(t, entries, 1)
}

func TestAssembler_AuditorFailureDoesNotPropagate(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	assembler := NewAssembler(AuditorFunc(func(*models.QueryAudit) error {
		return errors.New("audit store down")
	}), logger)

	query := models.NewInformationQuery("q", &models.LocalizationContext{CountryCode: "KE"})
	result := assembler.Assemble(query, nil, nil, nil)

	require.NotNil(t, result)
	assert.NotEmpty(t, logs.FilterMessage("failed to record query audit").All())
}
