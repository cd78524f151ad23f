package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
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
	"docchat/internal/tui"
	"docchat/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var admin bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docchat/config.yaml if not provided)")
	flag.BoolVar(&admin, "admin", false, "Run with a privileged session (unlocks /tokens)")
	flag.Parse()

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

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	p, err := assemble(cfg, logger)
	if err != nil {
		log.Fatalf("failed to assemble pipeline: %v", err)
	}

	m := tui.New(p, admin)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
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
