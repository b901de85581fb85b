// Package app wires the knowledge plane together: config, logging,
// storage, collaborators, the source registry, and the query router.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/avaolo/knowledge-plane/backend/config"
	"github.com/avaolo/knowledge-plane/backend/hierarchy"
	"github.com/avaolo/knowledge-plane/backend/models"
	"github.com/avaolo/knowledge-plane/backend/repositories"
	"github.com/avaolo/knowledge-plane/backend/repositories/postgres"
	"github.com/avaolo/knowledge-plane/backend/services/audit"
	"github.com/avaolo/knowledge-plane/backend/services/knowledge"
	"github.com/avaolo/knowledge-plane/backend/sources"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection: the
// registry and router are explicit objects handed to request handlers,
// never package-level singletons.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repositories
	Farmers repositories.FarmerRepository
	Audits  repositories.AuditRepository

	// Collaborators
	Knowledge *knowledge.Service

	// Services
	AuditService *audit.Service

	// Core
	Registry *hierarchy.Registry
	Router   *hierarchy.Router
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize PostgreSQL
	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize the knowledge base collaborator
	if err := deps.initKnowledge(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize knowledge service: %w", err)
	}

	// Initialize the audit trail
	if err := deps.initAudit(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize audit service: %w", err)
	}

	// Initialize the retrieval core and default sources
	deps.initHierarchy(cfg)
	if err := deps.registerDefaultSources(cfg); err != nil {
		return nil, fmt.Errorf("failed to register default sources: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection and repositories
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return err
	}
	d.DB = db

	if err := db.InitAuditSchema(ctx); err != nil {
		return err
	}

	d.Farmers = postgres.NewFarmerRepository(db, d.Logger)
	d.Audits = postgres.NewAuditRepository(db, d.Logger)

	return nil
}

// initKnowledge initializes the embedding and vector search collaborator
func (d *Dependencies) initKnowledge(cfg *config.Config) error {
	embedder := knowledge.NewOpenAIEmbedder(cfg.Embeddings)

	svc, err := knowledge.NewService(cfg.Qdrant, embedder, d.Logger)
	if err != nil {
		return err
	}
	d.Knowledge = svc

	return nil
}

// initAudit starts the async audit trail workers
func (d *Dependencies) initAudit(cfg *config.Config) error {
	d.AuditService = audit.NewService(d.Audits, d.Logger, audit.Config{
		BufferSize:  cfg.Audit.BufferSize,
		WorkerCount: cfg.Audit.WorkerCount,
	})
	return d.AuditService.Start()
}

// initHierarchy builds the registry, validator, assembler, and router
func (d *Dependencies) initHierarchy(cfg *config.Config) {
	d.Registry = hierarchy.NewRegistry(d.Logger)
	validator := hierarchy.NewValidator(d.Logger)
	assembler := hierarchy.NewAssembler(d.AuditService, d.Logger)

	d.Router = hierarchy.NewRouter(d.Registry, validator, assembler, d.Logger, hierarchy.Config{
		SourceTimeout: cfg.Retrieval.SourceTimeout,
	})
}

// registerDefaultSources registers the standard source set. The farmer
// database holds private farmer data and country advisories but no
// global content; the knowledge base is country and global only; web
// search is global only, for privacy protection.
func (d *Dependencies) registerDefaultSources(cfg *config.Config) error {
	farmerStore := sources.NewFarmerStore(d.Farmers, d.Logger)
	if err := d.Registry.Register(models.InformationSource{
		ID:   "farmer_db",
		Name: "Farmer Database",
		Kind: models.SourceKindDatabase,
		Capabilities: models.Capabilities{
			FarmerData:  true,
			CountryData: true,
			GlobalData:  false,
		},
	}, farmerStore); err != nil {
		return err
	}

	knowledgeBase := sources.NewKnowledgeBase(d.Knowledge, d.Logger)
	if err := d.Registry.Register(models.InformationSource{
		ID:   "rag_knowledge",
		Name: "Agricultural Knowledge Base",
		Kind: models.SourceKindKnowledgeBase,
		Capabilities: models.Capabilities{
			FarmerData:  false,
			CountryData: true,
			GlobalData:  true,
		},
	}, knowledgeBase); err != nil {
		return err
	}

	webSearch := sources.NewWebSearch(d.Config.WebSearch, d.Logger)
	if err := d.Registry.Register(models.InformationSource{
		ID:   "external_search",
		Name: "Web Search",
		Kind: models.SourceKindExternal,
		Capabilities: models.Capabilities{
			FarmerData:  false,
			CountryData: false,
			GlobalData:  true,
		},
	}, webSearch); err != nil {
		return err
	}

	return nil
}

// Close shuts down all dependencies gracefully
func (d *Dependencies) Close() error {
	if d.AuditService != nil {
		if err := d.AuditService.Stop(10 * time.Second); err != nil {
			d.Logger.Warn("audit service shutdown incomplete", zap.Error(err))
		}
	}
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
