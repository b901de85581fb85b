package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/avaolo/knowledge-plane/backend/models"
	qdrant "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// Search performs a filtered semantic search over the knowledge base and
// returns ranked documents with scores.
func (s *Service) Search(ctx context.Context, query string, filters models.SearchFilters, topK int) ([]models.ScoredDocument, error) {
	if topK <= 0 {
		topK = 5
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	resp, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		Filter:         buildFilter(filters),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}

	documents := make([]models.ScoredDocument, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		documents = append(documents, scoredDocument(point))
	}

	s.logger.Info("knowledge search completed",
		zap.String("query", query),
		zap.Int("documents", len(documents)))
	return documents, nil
}

// SearchPesticide looks up pre-harvest-interval information for a
// chemical, optionally narrowed to a crop. Handles queries like
// "Koliko je karenca za Prosaro u pšenici?".
func (s *Service) SearchPesticide(ctx context.Context, chemical, crop string) (*models.PesticideResult, error) {
	query := chemical
	if crop != "" {
		query += " " + crop
	}

	filters := models.SearchFilters{
		DocumentType: models.DocumentTypePesticide,
		Chemical:     chemical,
		Crop:         crop,
	}

	documents, err := s.Search(ctx, query, filters, 3)
	if err != nil {
		return nil, fmt.Errorf("pesticide search failed: %w", err)
	}

	result := &models.PesticideResult{Documents: documents}
	for _, doc := range documents {
		if doc.PHIDays == nil {
			continue
		}
		docCrop := crop
		if docCrop == "" {
			docCrop = doc.Crop
		}
		result.Found = true
		result.Info = &models.PesticideInfo{
			Chemical:       chemical,
			Crop:           docCrop,
			PHIDays:        *doc.PHIDays,
			Source:         doc.Source,
			AdditionalInfo: doc.Text,
		}
		break
	}
	if !result.Found {
		result.Message = fmt.Sprintf("No PHI information found for %s", chemical)
	}

	return result, nil
}

// SearchCropProtection returns crop-protection recommendations grouped
// by treatment category.
func (s *Service) SearchCropProtection(ctx context.Context, crop, problem string) (*models.CropProtectionAdvice, error) {
	query := crop + " protection"
	if problem != "" {
		query += " " + problem
	}

	filters := models.SearchFilters{
		DocumentType: models.DocumentTypeCropProtection,
		Crop:         crop,
	}

	documents, err := s.Search(ctx, query, filters, 5)
	if err != nil {
		return nil, fmt.Errorf("crop protection search failed: %w", err)
	}

	advice := &models.CropProtectionAdvice{}
	for _, doc := range documents {
		category := models.ProtectionGeneral
		if v, ok := doc.Metadata["protection_type"].(string); ok && v != "" {
			category = models.ProtectionCategory(strings.ToLower(v))
		}

		rec := models.ProtectionRecommendation{
			Chemical: doc.Chemical,
			Details:  doc.Text,
		}
		if v, ok := doc.Metadata["target_pest"].(string); ok {
			rec.TargetPest = v
		}
		if v, ok := doc.Metadata["dosage"].(string); ok {
			rec.Dosage = v
		}
		if v, ok := doc.Metadata["application_timing"].(string); ok {
			rec.Timing = v
		}
		advice.Add(category, rec)
	}

	return advice, nil
}
