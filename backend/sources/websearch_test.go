package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avaolo/knowledge-plane/backend/config"
	"github.com/avaolo/knowledge-plane/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func globalRequest(query string) RetrievalRequest {
	farmerID := int64(123)
	return RetrievalRequest{
		QueryText: query,
		Tier:      models.TierGlobal,
		Context: &models.LocalizationContext{
			WhatsAppNumber: "+359123456789",
			CountryCode:    "BG",
			FarmerID:       &farmerID,
		},
		Limit: 5,
	}
}

func TestWebSearch_Retrieve(t *testing.T) {
	var captured webSearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"title": "Mango ripening", "snippet": "harvest when shoulders fill out", "url": "https://example.org/mango"},
			},
		})
	}))
	defer server.Close()

	ws := NewWebSearch(config.WebSearchConfig{
		Endpoint: server.URL,
		APIKey:   "test-key",
		Timeout:  5 * time.Second,
	}, zap.NewNop())

	items, err := ws.Retrieve(context.Background(), globalRequest("mango harvest timing"))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, models.TierGlobal, items[0].Tier)
	assert.Equal(t, models.SourceKindExternal, items[0].SourceKind)
	assert.Equal(t, "Mango ripening: harvest when shoulders fill out", items[0].Content)
	assert.Equal(t, "https://example.org/mango", items[0].Metadata["url"])

	// Only the bare query text crosses the boundary.
	assert.Equal(t, "mango harvest timing", captured.Query)
	assert.Equal(t, 5, captured.MaxResults)
}

func TestWebSearch_ScrubsOutboundQuery(t *testing.T) {
	var captured webSearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{"results": []map[string]string{}})
	}))
	defer server.Close()

	ws := NewWebSearch(config.WebSearchConfig{Endpoint: server.URL, Timeout: time.Second}, zap.NewNop())

	_, err := ws.Retrieve(context.Background(), globalRequest("blight treatment, my number is +359123456789"))
	require.NoError(t, err)

	assert.NotContains(t, captured.Query, "+359123456789")
	assert.Contains(t, captured.Query, "[PHONE_REDACTED]")
}

func TestWebSearch_NonGlobalTierServesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("the external endpoint must never see non-global requests")
	}))
	defer server.Close()

	ws := NewWebSearch(config.WebSearchConfig{Endpoint: server.URL, Timeout: time.Second}, zap.NewNop())

	req := globalRequest("q")
	req.Tier = models.TierFarmer
	items, err := ws.Retrieve(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWebSearch_UpstreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	ws := NewWebSearch(config.WebSearchConfig{Endpoint: server.URL, Timeout: time.Second}, zap.NewNop())

	_, err := ws.Retrieve(context.Background(), globalRequest("q"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestWebSearch_MissingEndpoint(t *testing.T) {
	ws := NewWebSearch(config.WebSearchConfig{Timeout: time.Second}, zap.NewNop())

	_, err := ws.Retrieve(context.Background(), globalRequest("q"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
