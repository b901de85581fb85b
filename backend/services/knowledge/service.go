// Package knowledge implements the embedding/vector-search collaborator
// backing the knowledge-base source: filtered semantic search over
// agricultural documents in Qdrant, plus document ingestion.
package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/avaolo/knowledge-plane/backend/config"
	"github.com/avaolo/knowledge-plane/backend/models"
	qdrant "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Service is the agricultural knowledge search collaborator.
type Service struct {
	collections qdrant.CollectionsClient
	points      qdrant.PointsClient
	embedder    Embedder
	collection  string
	vectorSize  int
	logger      *zap.Logger
}

// NewService connects to Qdrant and creates the knowledge service.
func NewService(cfg config.QdrantConfig, embedder Embedder, logger *zap.Logger) (*Service, error) {
	conn, err := grpc.NewClient(cfg.Address(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	return newService(
		qdrant.NewCollectionsClient(conn),
		qdrant.NewPointsClient(conn),
		embedder, cfg.Collection, cfg.VectorSize, logger,
	), nil
}

// newService wires the service from explicit clients. Split out so tests
// can substitute stub clients.
func newService(collections qdrant.CollectionsClient, points qdrant.PointsClient, embedder Embedder, collection string, vectorSize int, logger *zap.Logger) *Service {
	return &Service{
		collections: collections,
		points:      points,
		embedder:    embedder,
		collection:  collection,
		vectorSize:  vectorSize,
		logger:      logger,
	}
}

// ensureCollection creates the collection when it does not exist yet.
func (s *Service) ensureCollection(ctx context.Context) error {
	_, err := s.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{
		CollectionName: s.collection,
	})
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.NotFound {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	s.logger.Info("creating collection", zap.String("collection", s.collection))
	_, err = s.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(s.vectorSize),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// buildFilter translates search filters into a Qdrant payload filter.
// Returns nil when no filter field is set.
func buildFilter(filters models.SearchFilters) *qdrant.Filter {
	if filters.Empty() {
		return nil
	}

	var must []*qdrant.Condition
	keyword := func(key, value string) *qdrant.Condition {
		return &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:   key,
					Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: value}},
				},
			},
		}
	}

	if filters.DocumentType != "" {
		must = append(must, keyword("document_type", string(filters.DocumentType)))
	}
	if filters.Crop != "" {
		must = append(must, keyword("crop", strings.ToLower(filters.Crop)))
	}
	if filters.Chemical != "" {
		must = append(must, keyword("chemical", strings.ToLower(filters.Chemical)))
	}
	if filters.Language != "" {
		must = append(must, keyword("language", filters.Language))
	}
	if filters.CountryCode != "" {
		must = append(must, keyword("country_code", filters.CountryCode))
	}

	return &qdrant.Filter{Must: must}
}

// documentPayload flattens a document into a Qdrant payload.
func documentPayload(doc models.Document, indexedAt string) map[string]*qdrant.Value {
	payload := map[string]*qdrant.Value{
		"text":          {Kind: &qdrant.Value_StringValue{StringValue: doc.Text}},
		"source":        {Kind: &qdrant.Value_StringValue{StringValue: doc.Source}},
		"document_type": {Kind: &qdrant.Value_StringValue{StringValue: string(doc.DocumentType)}},
		"language":      {Kind: &qdrant.Value_StringValue{StringValue: doc.Language}},
		"indexed_at":    {Kind: &qdrant.Value_StringValue{StringValue: indexedAt}},
	}
	if doc.CountryCode != "" {
		payload["country_code"] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: doc.CountryCode}}
	}
	if doc.Crop != "" {
		payload["crop"] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: strings.ToLower(doc.Crop)}}
	}
	if doc.Chemical != "" {
		payload["chemical"] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: strings.ToLower(doc.Chemical)}}
	}
	if doc.PHIDays != nil {
		payload["phi_days"] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(*doc.PHIDays)}}
	}
	return payload
}

// scoredDocument rebuilds a ScoredDocument from a Qdrant hit.
func scoredDocument(point *qdrant.ScoredPoint) models.ScoredDocument {
	payload := point.GetPayload()

	doc := models.ScoredDocument{
		ID:           point.GetId().GetUuid(),
		Score:        point.GetScore(),
		Text:         payload["text"].GetStringValue(),
		Source:       payload["source"].GetStringValue(),
		DocumentType: models.DocumentType(payload["document_type"].GetStringValue()),
		Language:     payload["language"].GetStringValue(),
		CountryCode:  payload["country_code"].GetStringValue(),
		Crop:         payload["crop"].GetStringValue(),
		Chemical:     payload["chemical"].GetStringValue(),
	}
	if doc.Source == "" {
		doc.Source = "unknown"
	}
	if doc.DocumentType == "" {
		doc.DocumentType = models.DocumentTypeGeneral
	}
	if v, ok := payload["phi_days"]; ok {
		days := int(v.GetIntegerValue())
		doc.PHIDays = &days
	}

	metadata := make(map[string]any, len(payload))
	for key, value := range payload {
		switch kind := value.GetKind().(type) {
		case *qdrant.Value_StringValue:
			metadata[key] = kind.StringValue
		case *qdrant.Value_IntegerValue:
			metadata[key] = kind.IntegerValue
		case *qdrant.Value_DoubleValue:
			metadata[key] = kind.DoubleValue
		case *qdrant.Value_BoolValue:
			metadata[key] = kind.BoolValue
		}
	}
	doc.Metadata = metadata

	return doc
}
