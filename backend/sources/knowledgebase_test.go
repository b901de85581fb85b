package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/avaolo/knowledge-plane/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSearcher captures the filters it was called with and returns a
// canned document list.
type stubSearcher struct {
	lastQuery   string
	lastFilters models.SearchFilters
	lastTopK    int
	documents   []models.ScoredDocument
	err         error
}

func (s *stubSearcher) Search(ctx context.Context, query string, filters models.SearchFilters, topK int) ([]models.ScoredDocument, error) {
	s.lastQuery = query
	s.lastFilters = filters
	s.lastTopK = topK
	return s.documents, s.err
}

func TestKnowledgeBase_CountryTierScopesToCountry(t *testing.T) {
	searcher := &stubSearcher{documents: []models.ScoredDocument{{
		Text:         "Copper treatments are restricted in Bulgaria",
		CountryCode:  "BG",
		Language:     "bg",
		Source:       "bg_regulations.pdf",
		DocumentType: models.DocumentTypeRegulation,
		Score:        0.91,
	}}}
	kb := NewKnowledgeBase(searcher, zap.NewNop())

	items, err := kb.Retrieve(context.Background(), RetrievalRequest{
		QueryText: "copper fungicide rules",
		Tier:      models.TierCountry,
		Context:   &models.LocalizationContext{CountryCode: "BG", PreferredLanguage: "bg"},
		Limit:     5,
	})
	require.NoError(t, err)

	assert.Equal(t, "BG", searcher.lastFilters.CountryCode)
	assert.Equal(t, "bg", searcher.lastFilters.Language)
	assert.Equal(t, 5, searcher.lastTopK)

	require.Len(t, items, 1)
	assert.Equal(t, models.TierCountry, items[0].Tier)
	assert.Equal(t, models.SourceKindKnowledgeBase, items[0].SourceKind)
	assert.Equal(t, "bg_regulations.pdf", items[0].Metadata["document"])
}

func TestKnowledgeBase_GlobalTierIsUnscoped(t *testing.T) {
	searcher := &stubSearcher{}
	kb := NewKnowledgeBase(searcher, zap.NewNop())

	_, err := kb.Retrieve(context.Background(), RetrievalRequest{
		QueryText: "integrated pest management",
		Tier:      models.TierGlobal,
		Context:   &models.LocalizationContext{CountryCode: "BG", PreferredLanguage: "bg"},
		Limit:     3,
	})
	require.NoError(t, err)

	assert.True(t, searcher.lastFilters.Empty(), "global searches must carry no country scoping")
}

func TestKnowledgeBase_CountryTierWithoutCountryCode(t *testing.T) {
	searcher := &stubSearcher{}
	kb := NewKnowledgeBase(searcher, zap.NewNop())

	items, err := kb.Retrieve(context.Background(), RetrievalRequest{
		QueryText: "q",
		Tier:      models.TierCountry,
		Context:   &models.LocalizationContext{},
		Limit:     5,
	})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, searcher.lastQuery, "searcher must not be called without a country code")
}

func TestKnowledgeBase_FarmerTierServesNothing(t *testing.T) {
	searcher := &stubSearcher{}
	kb := NewKnowledgeBase(searcher, zap.NewNop())

	farmerID := int64(7)
	items, err := kb.Retrieve(context.Background(), RetrievalRequest{
		QueryText: "q",
		Tier:      models.TierFarmer,
		Context:   &models.LocalizationContext{FarmerID: &farmerID},
		Limit:     5,
	})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestKnowledgeBase_SearchErrorPropagates(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("vector store unavailable")}
	kb := NewKnowledgeBase(searcher, zap.NewNop())

	_, err := kb.Retrieve(context.Background(), RetrievalRequest{
		QueryText: "q",
		Tier:      models.TierGlobal,
		Context:   &models.LocalizationContext{},
		Limit:     5,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "knowledge base search failed")
}
