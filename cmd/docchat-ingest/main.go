// docchat-ingest loads every document in a token's file directory into the
// document store: raw text into the file store, chunk embeddings into the
// vector index.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/docstore"
	"docchat/internal/extract"
	"docchat/internal/filestore"
	"docchat/internal/llm"
	"docchat/internal/logging"
	"docchat/internal/pipeline"
	"docchat/internal/summarizer"
	"docchat/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional)")
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		fmt.Println("Usage: docchat-ingest [--config=config.yaml] <token> [files_dir]")
		os.Exit(1)
	}
	token := args[0]

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dir := cfg.Storage.FilesPath
	if len(args) > 1 {
		dir = args[1]
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	p, err := assemble(cfg, logger)
	if err != nil {
		logger.Fatal("failed to assemble pipeline", zap.Error(err))
	}

	ctx := context.Background()
	outcomes, err := p.LoadToken(ctx, token, dir)
	if err != nil {
		logger.Fatal("ingestion failed", zap.String("token", token), zap.Error(err))
	}

	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Printf("skipped  %s: %v\n", o.Filename, o.Err)
			continue
		}
		fmt.Printf("ingested %s\n", o.Filename)
		if o.Summary != "" {
			fmt.Printf("         %s\n", o.Summary)
		}
	}

	docs, err := p.ListDocuments(ctx, token)
	if err != nil {
		logger.Fatal("listing documents failed", zap.Error(err))
	}
	fmt.Printf("\ndocuments for %s:\n", token)
	for _, d := range docs {
		fmt.Printf("  • %s\n", d)
	}
}

func assemble(cfg *config.AppConfig, logger *zap.Logger) (*pipeline.Pipeline, error) {
	client, err := llm.NewClient(llm.Config{
		APIKey:         os.Getenv(cfg.OpenAI.APIKeyEnv),
		BaseURL:        cfg.OpenAI.BaseURL,
		Model:          cfg.OpenAI.Model,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		Temperature:    cfg.OpenAI.Temperature,
	})
	if err != nil {
		return nil, err
	}

	ch := chunker.NewCharacterChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)

	files, err := filestore.NewStore(cfg.Storage.FilesPath, logger)
	if err != nil {
		return nil, err
	}

	var vcfg vectorstore.Config
	switch cfg.VectorStore.Type {
	case "chromem", "":
		vcfg = vectorstore.Config{Path: cfg.Storage.VectorsPath, Compress: cfg.Storage.Compress}
	case "memory":
		vcfg = vectorstore.Config{InMemory: true}
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
	vectors, err := vectorstore.NewStore(vcfg, client, ch, logger)
	if err != nil {
		return nil, err
	}

	store := docstore.NewStore(files, vectors, logger)
	return pipeline.New(
		store,
		extract.NewPlainText(logger),
		client,
		summarizer.NewFrequencySummarizer(),
		pipeline.Config{
			TopK:                cfg.Retrieval.TopK,
			SystemPrompt:        cfg.Prompts.SystemPrompt,
			SummaryMaxSentences: cfg.Summarizer.MaxSentences,
		},
		logger,
	), nil
}
