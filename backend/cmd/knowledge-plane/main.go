package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/avaolo/knowledge-plane/backend/app"
	"github.com/avaolo/knowledge-plane/backend/config"
	"github.com/avaolo/knowledge-plane/backend/internal/observability"
	"github.com/avaolo/knowledge-plane/backend/models"
	"go.uber.org/zap"
)

func main() {
	var (
		queryText = flag.String("query", "", "run a single information query and print the result")
		farmerID  = flag.Int64("farmer-id", 0, "farmer id for the query context")
		country   = flag.String("country", "", "country code for the query context")
		language  = flag.String("language", "", "preferred language for the query context")
		whatsapp  = flag.String("whatsapp", "", "whatsapp number for the query context")
	)
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close() //nolint:errcheck

	if *queryText == "" {
		logger.Info("knowledge plane ready; no query given, exiting")
		return
	}

	lctx := &models.LocalizationContext{
		WhatsAppNumber:    *whatsapp,
		CountryCode:       *country,
		PreferredLanguage: *language,
	}
	if *farmerID != 0 {
		lctx.FarmerID = farmerID
	}

	result, err := deps.Router.Query(ctx, models.NewInformationQuery(*queryText, lctx))
	if err != nil {
		logger.Fatal("query failed", zap.Error(err))
	}

	out, err := json.MarshalIndent(result.Serialize(), "", "  ")
	if err != nil {
		logger.Fatal("failed to encode result", zap.Error(err))
	}
	fmt.Println(string(out))
}
