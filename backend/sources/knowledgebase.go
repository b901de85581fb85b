package sources

import (
	"context"
	"fmt"

	"github.com/avaolo/knowledge-plane/backend/models"
	"go.uber.org/zap"
)

// Searcher is the slice of the knowledge service this source consumes.
type Searcher interface {
	Search(ctx context.Context, query string, filters models.SearchFilters, topK int) ([]models.ScoredDocument, error)
}

// KnowledgeBase retrieves country-tier and global-tier information from
// the vector-indexed agricultural knowledge base.
type KnowledgeBase struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewKnowledgeBase creates the knowledge base retriever.
func NewKnowledgeBase(searcher Searcher, logger *zap.Logger) *KnowledgeBase {
	return &KnowledgeBase{searcher: searcher, logger: logger}
}

// Retrieve runs a filtered semantic search scoped to the requested tier:
// country-tier searches are restricted to documents for the caller's
// country, global-tier searches carry no country restriction.
func (k *KnowledgeBase) Retrieve(ctx context.Context, req RetrievalRequest) ([]models.InformationItem, error) {
	var filters models.SearchFilters
	switch req.Tier {
	case models.TierCountry:
		if req.Context.CountryCode == "" {
			return nil, nil
		}
		filters.CountryCode = req.Context.CountryCode
		filters.Language = req.Context.PreferredLanguage
	case models.TierGlobal:
		// no scoping: global knowledge is served to everyone
	default:
		return nil, nil
	}

	documents, err := k.searcher.Search(ctx, req.QueryText, filters, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("knowledge base search failed: %w", err)
	}

	items := make([]models.InformationItem, 0, len(documents))
	for _, doc := range documents {
		item := models.InformationItem{
			Content:     doc.Text,
			Tier:        req.Tier,
			CountryCode: doc.CountryCode,
			Language:    doc.Language,
			SourceKind:  models.SourceKindKnowledgeBase,
			Metadata: map[string]any{
				"document":        doc.Source,
				"document_type":   string(doc.DocumentType),
				"relevance_score": doc.Score,
			},
		}
		items = append(items, item)
	}

	k.logger.Debug("knowledge base retrieval completed",
		zap.String("relevance", string(req.Tier)),
		zap.Int("items", len(items)))
	return items, nil
}
