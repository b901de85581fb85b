package hierarchy

import (
	"context"
	"sync"
	"time"

	"github.com/avaolo/knowledge-plane/backend/models"
	"github.com/avaolo/knowledge-plane/backend/sources"
	"go.uber.org/zap"
)

// Config holds configuration for the Router
type Config struct {
	SourceTimeout time.Duration // per-source retrieval deadline
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		SourceTimeout: 10 * time.Second,
	}
}

// Router is the sole entry point for tiered information retrieval. For
// every required tier it fans out to eligible sources, validates each
// candidate item, and hands the tier lists to the assembler.
type Router struct {
	registry  *Registry
	validator *Validator
	assembler *Assembler
	timeout   time.Duration
	logger    *zap.Logger
}

// NewRouter creates a Router over the given registry.
func NewRouter(registry *Registry, validator *Validator, assembler *Assembler, logger *zap.Logger, cfg Config) *Router {
	timeout := cfg.SourceTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().SourceTimeout
	}
	return &Router{
		registry:  registry,
		validator: validator,
		assembler: assembler,
		timeout:   timeout,
		logger:    logger,
	}
}

// Query retrieves information for every required tier and assembles the
// privacy-validated result. A query without a localization context is the
// only fatal condition; source failures and empty tiers degrade
// gracefully into partial results.
func (r *Router) Query(ctx context.Context, query *models.InformationQuery) (*models.InformationResult, error) {
	if query == nil || query.Context == nil {
		return nil, ErrMissingContext
	}

	limit := query.MaxItemsPerLevel
	if limit <= 0 {
		limit = models.DefaultMaxItemsPerLevel
	}
	required := query.RequiredTiers
	if len(required) == 0 {
		required = models.AllTiers()
	}

	// One consistent snapshot for the whole query; concurrent
	// registrations do not affect in-flight retrieval.
	snapshot := r.registry.Snapshot()

	// RequiredTiers is treated as a set; assembly order is fixed by the
	// hierarchy, not by the query.
	seen := make(map[models.Tier]bool, 3)
	tiers := make([]models.Tier, 0, 3)
	for _, tier := range required {
		if !tier.Valid() {
			r.logger.Warn("ignoring unknown relevance tier", zap.String("relevance", string(tier)))
			continue
		}
		if !seen[tier] {
			seen[tier] = true
			tiers = append(tiers, tier)
		}
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		byTier = make(map[models.Tier][]models.InformationItem, len(tiers))
	)
	for _, tier := range tiers {
		wg.Add(1)
		go func(tier models.Tier) {
			defer wg.Done()
			items := r.queryTier(ctx, snapshot, tier, query, limit)
			mu.Lock()
			byTier[tier] = items
			mu.Unlock()
		}(tier)
	}
	wg.Wait()

	return r.assembler.Assemble(query,
		byTier[models.TierFarmer],
		byTier[models.TierCountry],
		byTier[models.TierGlobal]), nil
}

// Capabilities exposes the registry's diagnostics view.
func (r *Router) Capabilities() map[string]models.SourceCapabilityReport {
	return r.registry.Capabilities()
}

// queryTier fans out to every eligible source for one tier, concatenates
// accepted items in registration order, and truncates to the per-tier
// cap. Zero eligible sources is not an error; the tier is simply empty.
func (r *Router) queryTier(ctx context.Context, snapshot []RegisteredSource, tier models.Tier, query *models.InformationQuery, limit int) []models.InformationItem {
	if !tierPrecondition(tier, query.Context) {
		r.logger.Debug("tier precondition not met",
			zap.String("relevance", string(tier)))
		return nil
	}

	eligible := make([]RegisteredSource, 0, len(snapshot))
	for _, entry := range snapshot {
		if entry.Source.Capabilities.Allows(tier) {
			eligible = append(eligible, entry)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	// Indexed collection keeps registration order deterministic even
	// though sources run concurrently.
	collected := make([][]models.InformationItem, len(eligible))
	var wg sync.WaitGroup
	for i, entry := range eligible {
		wg.Add(1)
		go func(i int, entry RegisteredSource) {
			defer wg.Done()
			collected[i] = r.retrieveFromSource(ctx, entry, tier, query, limit)
		}(i, entry)
	}
	wg.Wait()

	var items []models.InformationItem
	for _, batch := range collected {
		items = append(items, batch...)
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// retrieveFromSource invokes one source's retrieval capability under the
// per-call deadline and validates every candidate. A failed, timed-out,
// or panicking source contributes nothing; other sources and tiers
// still complete.
func (r *Router) retrieveFromSource(ctx context.Context, entry RegisteredSource, tier models.Tier, query *models.InformationQuery, limit int) (items []models.InformationItem) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("source panicked during retrieval, continuing without it",
				zap.String("source_id", entry.Source.ID),
				zap.String("relevance", string(tier)),
				zap.Any("panic", rec))
			items = nil
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	candidates, err := entry.Retriever.Retrieve(callCtx, sources.RetrievalRequest{
		QueryText: query.Text,
		Tier:      tier,
		Context:   query.Context,
		Limit:     limit,
	})
	if err != nil {
		r.logger.Warn("source retrieval failed, continuing without it",
			zap.String("source_id", entry.Source.ID),
			zap.String("source_name", entry.Source.Name),
			zap.String("relevance", string(tier)),
			zap.Error(err))
		return nil
	}

	accepted := make([]models.InformationItem, 0, len(candidates))
	for _, item := range candidates {
		if r.validator.Validate(item, entry.Source) {
			accepted = append(accepted, item)
		}
	}
	return accepted
}

// tierPrecondition checks the context requirement for a tier: farmer
// data needs a farmer id, country data needs a country code, global has
// no extra requirement.
func tierPrecondition(tier models.Tier, lctx *models.LocalizationContext) bool {
	switch tier {
	case models.TierFarmer:
		return lctx.FarmerID != nil
	case models.TierCountry:
		return lctx.CountryCode != ""
	}
	return true
}
