// Package sources contains the retrieval-capability collaborators that
// back registered information sources: the farmer record store, the
// vector-indexed knowledge base, and the web search connector. The core
// depends only on the Retriever shape, not on any backend protocol.
package sources

import (
	"context"

	"github.com/avaolo/knowledge-plane/backend/models"
)

// RetrievalRequest asks a source for candidate items at one tier.
type RetrievalRequest struct {
	QueryText string
	Tier      models.Tier
	Context   *models.LocalizationContext
	Limit     int
}

// Retriever is the retrieval capability implemented by each source
// backend. Implementations return zero or more candidate items; an error
// means the source contributed nothing for this query.
type Retriever interface {
	Retrieve(ctx context.Context, req RetrievalRequest) ([]models.InformationItem, error)
}

// RetrieverFunc adapts a function to the Retriever interface.
type RetrieverFunc func(ctx context.Context, req RetrievalRequest) ([]models.InformationItem, error)

// Retrieve calls f.
func (f RetrieverFunc) Retrieve(ctx context.Context, req RetrievalRequest) ([]models.InformationItem, error) {
	return f(ctx, req)
}
