package knowledge

import (
	"context"
	"testing"

	"github.com/avaolo/knowledge-plane/backend/models"
	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDocument_UpsertsPayload(t *testing.T) {
	var captured *qdrant.UpsertPoints
	points := &stubPointsClient{upsertFn: func(in *qdrant.UpsertPoints) (*qdrant.PointsOperationResponse, error) {
		captured = in
		return &qdrant.PointsOperationResponse{}, nil
	}}
	svc := testService(points, nil, &stubEmbedder{vector: []float32{0.5, 0.5}})

	phi := 21
	err := svc.AddDocument(context.Background(), models.Document{
		Text:         "Karenca za bakar na vinovoj lozi je 21 dan",
		Source:       "vineyard_guide.pdf",
		DocumentType: models.DocumentTypePesticide,
		Language:     "sr",
		CountryCode:  "RS",
		Crop:         "Grapes",
		Chemical:     "Copper",
		PHIDays:      &phi,
	})
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "agri_knowledge", captured.CollectionName)
	require.Len(t, captured.Points, 1)

	point := captured.Points[0]
	assert.NotEmpty(t, point.Id.GetUuid())
	assert.Equal(t, []float32{0.5, 0.5}, point.Vectors.GetVector().Data)

	payload := point.Payload
	assert.Equal(t, "vineyard_guide.pdf", payload["source"].GetStringValue())
	assert.Equal(t, "pesticide", payload["document_type"].GetStringValue())
	assert.Equal(t, "RS", payload["country_code"].GetStringValue())
	assert.Equal(t, "grapes", payload["crop"].GetStringValue(), "crop is lowercased for keyword matching")
	assert.Equal(t, "copper", payload["chemical"].GetStringValue())
	assert.Equal(t, int64(21), payload["phi_days"].GetIntegerValue())
	assert.NotEmpty(t, payload["indexed_at"].GetStringValue())
}

func TestAddDocument_RejectsEmptyText(t *testing.T) {
	points := &stubPointsClient{upsertFn: func(in *qdrant.UpsertPoints) (*qdrant.PointsOperationResponse, error) {
		t.Error("upsert must not be reached for an empty document")
		return nil, nil
	}}
	svc := testService(points, nil, &stubEmbedder{vector: []float32{0.1}})

	err := svc.AddDocument(context.Background(), models.Document{Source: "empty.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text cannot be empty")
}

func TestAddDocument_RejectsEmptyEmbedding(t *testing.T) {
	points := &stubPointsClient{upsertFn: func(in *qdrant.UpsertPoints) (*qdrant.PointsOperationResponse, error) {
		t.Error("upsert must not be reached for an empty embedding")
		return nil, nil
	}}
	svc := testService(points, nil, &stubEmbedder{vector: nil})

	err := svc.AddDocument(context.Background(), models.Document{Text: "some text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding for document was empty")
}

func TestBulkIndex_CountsFailures(t *testing.T) {
	var upserts int
	points := &stubPointsClient{upsertFn: func(in *qdrant.UpsertPoints) (*qdrant.PointsOperationResponse, error) {
		upserts++
		return &qdrant.PointsOperationResponse{}, nil
	}}
	svc := testService(points, nil, &stubEmbedder{vector: []float32{0.1}})

	stats := svc.BulkIndex(context.Background(), []models.Document{
		{Text: "first document", Source: "a.txt"},
		{Source: "broken.txt"}, // empty text fails, run continues
		{Text: "third document", Source: "c.txt"},
	})

	assert.Equal(t, models.IndexStats{Total: 3, Succeeded: 2, Failed: 1}, stats)
	assert.Equal(t, 2, upserts)
}
