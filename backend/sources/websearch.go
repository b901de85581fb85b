package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/avaolo/knowledge-plane/backend/config"
	"github.com/avaolo/knowledge-plane/backend/models"
	"go.uber.org/zap"
)

// WebSearch is the external web search connector. For privacy
// protection it serves the global tier only; no caller identity leaves
// the system.
type WebSearch struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

// NewWebSearch creates the web search retriever.
func NewWebSearch(cfg config.WebSearchConfig, logger *zap.Logger) *WebSearch {
	return &WebSearch{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

type webSearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type webSearchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		URL     string `json:"url"`
	} `json:"results"`
}

// Retrieve queries the external search API with the scrubbed query
// text; no caller identity or contact details leave the system.
func (w *WebSearch) Retrieve(ctx context.Context, req RetrievalRequest) ([]models.InformationItem, error) {
	if req.Tier != models.TierGlobal {
		return nil, nil
	}
	if w.endpoint == "" {
		return nil, fmt.Errorf("web search endpoint is not configured")
	}

	body, err := json.Marshal(webSearchRequest{
		Query:      scrubOutbound(req.QueryText),
		MaxResults: req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode web search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create web search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if w.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("web search returned status %d: %s", resp.StatusCode, respBody)
	}

	var searchResp webSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode web search response: %w", err)
	}

	items := make([]models.InformationItem, 0, len(searchResp.Results))
	for _, result := range searchResp.Results {
		content := result.Snippet
		if result.Title != "" {
			content = result.Title + ": " + content
		}
		items = append(items, models.InformationItem{
			Content:    content,
			Tier:       models.TierGlobal,
			SourceKind: models.SourceKindExternal,
			Metadata: map[string]any{
				"url": result.URL,
			},
		})
	}

	w.logger.Debug("web search completed", zap.Int("items", len(items)))
	return items, nil
}
