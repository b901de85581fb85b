// Package hierarchy implements the tiered information retrieval core:
// the source registry, the privacy validator, the query router, and the
// result assembler with its audit trail.
package hierarchy

import (
	"sync"

	"github.com/avaolo/knowledge-plane/backend/models"
	"github.com/avaolo/knowledge-plane/backend/sources"
	"go.uber.org/zap"
)

// RegisteredSource pairs a source descriptor with its retrieval
// capability.
type RegisteredSource struct {
	Source    models.InformationSource
	Retriever sources.Retriever
}

// Registry holds registered information sources keyed by id. Reads take
// a consistent snapshot so in-flight queries never observe a partially
// applied registration.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]RegisteredSource
	order   []string // registration order, stable across overwrites
	logger  *zap.Logger
}

// NewRegistry creates an empty source registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		sources: make(map[string]RegisteredSource),
		logger:  logger,
	}
}

// Register inserts or overwrites a source by id. Overwriting keeps the
// source's original registration slot so query-time ordering stays
// stable.
func (r *Registry) Register(src models.InformationSource, retriever sources.Retriever) error {
	if src.ID == "" {
		return ErrEmptySourceID
	}
	if retriever == nil {
		return ErrNilRetriever
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[src.ID]; !exists {
		r.order = append(r.order, src.ID)
	}
	r.sources[src.ID] = RegisteredSource{Source: src, Retriever: retriever}

	r.logger.Info("registered information source",
		zap.String("source_id", src.ID),
		zap.String("source_name", src.Name),
		zap.String("source_type", string(src.Kind)),
		zap.Bool("farmer_data", src.Capabilities.FarmerData),
		zap.Bool("country_data", src.Capabilities.CountryData),
		zap.Bool("global_data", src.Capabilities.GlobalData))

	return nil
}

// Snapshot returns a copy of all registered sources in registration
// order. The copy is safe to iterate for the duration of a query while
// registrations happen concurrently.
func (r *Registry) Snapshot() []RegisteredSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]RegisteredSource, 0, len(r.order))
	for _, id := range r.order {
		snapshot = append(snapshot, r.sources[id])
	}
	return snapshot
}

// Capabilities returns the capability flags and kind of every registered
// source, keyed by source id. Used for diagnostics and audit, not for
// query-time decisions.
func (r *Registry) Capabilities() map[string]models.SourceCapabilityReport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report := make(map[string]models.SourceCapabilityReport, len(r.sources))
	for id, entry := range r.sources {
		report[id] = models.SourceCapabilityReport{
			FarmerData:  entry.Source.Capabilities.FarmerData,
			CountryData: entry.Source.Capabilities.CountryData,
			GlobalData:  entry.Source.Capabilities.GlobalData,
			Kind:        entry.Source.Kind,
		}
	}
	return report
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}
