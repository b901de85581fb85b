package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/avaolo/knowledge-plane/backend/models"
	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// AddDocument embeds a document and stores it in the knowledge base.
func (s *Service) AddDocument(ctx context.Context, doc models.Document) error {
	if doc.Text == "" {
		return fmt.Errorf("document text cannot be empty")
	}

	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	embedding, err := s.embedder.Embed(ctx, doc.Text)
	if err != nil {
		return fmt.Errorf("failed to embed document: %w", err)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("embedding for document was empty")
	}

	docID := uuid.New().String()
	point := &qdrant.PointStruct{
		Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: docID}},
		Payload: documentPayload(doc, time.Now().UTC().Format(time.RFC3339)),
		Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: embedding}}},
	}

	_, err = s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	s.logger.Info("added document to knowledge base",
		zap.String("id", docID),
		zap.String("source", doc.Source),
		zap.String("document_type", string(doc.DocumentType)))
	return nil
}

// BulkIndex ingests a batch of documents and reports per-document
// success and failure counts. A failing document does not stop the run.
func (s *Service) BulkIndex(ctx context.Context, docs []models.Document) models.IndexStats {
	stats := models.IndexStats{Total: len(docs)}

	for _, doc := range docs {
		if err := s.AddDocument(ctx, doc); err != nil {
			s.logger.Error("failed to index document",
				zap.Error(err),
				zap.String("source", doc.Source))
			stats.Failed++
			continue
		}
		stats.Succeeded++
	}

	s.logger.Info("bulk indexing complete",
		zap.Int("total", stats.Total),
		zap.Int("success", stats.Succeeded),
		zap.Int("failed", stats.Failed))
	return stats
}
