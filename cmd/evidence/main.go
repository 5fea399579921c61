package main

import (
	"fmt"
	"os"

	"github.com/evidentlabs/evidence-cli/internal/adapters/driven/config/file"
	"github.com/evidentlabs/evidence-cli/internal/adapters/driven/storage/sqlite"
	"github.com/evidentlabs/evidence-cli/internal/adapters/driving/cli"
	"github.com/evidentlabs/evidence-cli/internal/connectors/gitlog"
	"github.com/evidentlabs/evidence-cli/internal/connectors/notes"
	"github.com/evidentlabs/evidence-cli/internal/core/services"
	"github.com/evidentlabs/evidence-cli/internal/sample"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	loader, err := file.NewLoader("")
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	synchronizer := services.NewSynchronizer(store.SourceStore())
	ingestService := services.NewIngestService(
		synchronizer,
		store.SourceStore(),
		store.ChunkStore(),
		notes.NewExtractor(),
		gitlog.NewExtractor(),
		cfg,
	)
	retrievalService := services.NewRetrievalService(store.ChunkStore())
	evalService := services.NewEvalService(store.EvalStore(), retrievalService)
	seeder := sample.NewSeeder(ingestService, store.SourceStore(), store.EvalStore())

	cli.Configure(cli.Services{
		Config:    cfg,
		Ingestor:  ingestService,
		Retriever: retrievalService,
		Evaluator: evalService,
		Seeder:    seeder,
	})

	return cli.Execute()
}
