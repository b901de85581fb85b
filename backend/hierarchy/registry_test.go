package hierarchy

import (
	"context"
	"sync"
	"testing"

	"github.com/avaolo/knowledge-plane/backend/models"
	"github.com/avaolo/knowledge-plane/backend/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func noopRetriever() sources.Retriever {
	return sources.RetrieverFunc(func(ctx context.Context, req sources.RetrievalRequest) ([]models.InformationItem, error) {
		return nil, nil
	})
}

func TestRegistry_Register(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	err := registry.Register(models.InformationSource{
		ID:   "farmer_db",
		Name: "Farmer Database",
		Kind: models.SourceKindDatabase,
		Capabilities: models.Capabilities{
			FarmerData:  true,
			CountryData: true,
		},
	}, noopRetriever())
	require.NoError(t, err)

	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_RegisterValidation(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	err := registry.Register(models.InformationSource{Name: "no id"}, noopRetriever())
	assert.ErrorIs(t, err, ErrEmptySourceID)

	err = registry.Register(models.InformationSource{ID: "s1"}, nil)
	assert.ErrorIs(t, err, ErrNilRetriever)

	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_OverwriteKeepsOrder(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	require.NoError(t, registry.Register(models.InformationSource{ID: "a", Name: "first"}, noopRetriever()))
	require.NoError(t, registry.Register(models.InformationSource{ID: "b", Name: "second"}, noopRetriever()))
	require.NoError(t, registry.Register(models.InformationSource{ID: "a", Name: "first-v2"}, noopRetriever()))

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "a", snapshot[0].Source.ID)
	assert.Equal(t, "first-v2", snapshot[0].Source.Name)
	assert.Equal(t, "b", snapshot[1].Source.ID)
}

func TestRegistry_SnapshotIsolation(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	require.NoError(t, registry.Register(models.InformationSource{ID: "a"}, noopRetriever()))

	snapshot := registry.Snapshot()
	require.NoError(t, registry.Register(models.InformationSource{ID: "b"}, noopRetriever()))

	// The earlier snapshot does not observe the later registration.
	assert.Len(t, snapshot, 1)
	assert.Len(t, registry.Snapshot(), 2)
}

func TestRegistry_Capabilities(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	require.NoError(t, registry.Register(models.InformationSource{
		ID:   "rag_knowledge",
		Kind: models.SourceKindKnowledgeBase,
		Capabilities: models.Capabilities{
			CountryData: true,
			GlobalData:  true,
		},
	}, noopRetriever()))

	report := registry.Capabilities()
	require.Contains(t, report, "rag_knowledge")
	assert.False(t, report["rag_knowledge"].FarmerData)
	assert.True(t, report["rag_knowledge"].CountryData)
	assert.True(t, report["rag_knowledge"].GlobalData)
	assert.Equal(t, models.SourceKindKnowledgeBase, report["rag_knowledge"].Kind)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = registry.Register(models.InformationSource{ID: string(rune('a' + i))}, noopRetriever())
		}(i)
		go func() {
			defer wg.Done()
			_ = registry.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, registry.Len())
}
