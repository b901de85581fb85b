package sources

import (
	"context"
	"fmt"

	"github.com/avaolo/knowledge-plane/backend/models"
	"github.com/avaolo/knowledge-plane/backend/repositories"
	"go.uber.org/zap"
)

// FarmerStore retrieves farmer-tier and country-tier information from
// the relational farmer-record store.
type FarmerStore struct {
	repo   repositories.FarmerRepository
	logger *zap.Logger
}

// NewFarmerStore creates the farmer database retriever.
func NewFarmerStore(repo repositories.FarmerRepository, logger *zap.Logger) *FarmerStore {
	return &FarmerStore{repo: repo, logger: logger}
}

// Retrieve returns candidate items for the requested tier. Farmer-tier
// requests read the caller's field records; country-tier requests read
// country advisories. The store serves no global content.
func (s *FarmerStore) Retrieve(ctx context.Context, req RetrievalRequest) ([]models.InformationItem, error) {
	switch req.Tier {
	case models.TierFarmer:
		return s.retrieveFarmerRecords(ctx, req)
	case models.TierCountry:
		return s.retrieveAdvisories(ctx, req)
	}
	return nil, nil
}

func (s *FarmerStore) retrieveFarmerRecords(ctx context.Context, req RetrievalRequest) ([]models.InformationItem, error) {
	if req.Context.FarmerID == nil {
		return nil, nil
	}
	farmerID := *req.Context.FarmerID

	records, err := s.repo.SearchRecords(ctx, farmerID, req.QueryText, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("farmer record search failed: %w", err)
	}

	items := make([]models.InformationItem, 0, len(records))
	for _, rec := range records {
		content := fmt.Sprintf("Field %s: %s", rec.FieldName, rec.Crop)
		if rec.Notes != "" {
			content += " (" + rec.Notes + ")"
		}
		items = append(items, models.InformationItem{
			Content:    content,
			Tier:       models.TierFarmer,
			FarmerID:   &farmerID,
			SourceKind: models.SourceKindDatabase,
			Metadata: map[string]any{
				"table":      "farmer_fields",
				"query_type": "farmer_overview",
				"updated_at": rec.UpdatedAt,
			},
		})
	}
	return items, nil
}

func (s *FarmerStore) retrieveAdvisories(ctx context.Context, req RetrievalRequest) ([]models.InformationItem, error) {
	if req.Context.CountryCode == "" {
		return nil, nil
	}

	advisories, err := s.repo.SearchAdvisories(ctx, req.Context.CountryCode, req.QueryText, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("country advisory search failed: %w", err)
	}

	items := make([]models.InformationItem, 0, len(advisories))
	for _, adv := range advisories {
		items = append(items, models.InformationItem{
			Content:     adv.Title + ": " + adv.Body,
			Tier:        models.TierCountry,
			CountryCode: adv.CountryCode,
			Language:    adv.Language,
			SourceKind:  models.SourceKindDatabase,
			Metadata: map[string]any{
				"table":        "country_advisories",
				"published_at": adv.PublishedAt,
			},
		})
	}
	return items, nil
}
