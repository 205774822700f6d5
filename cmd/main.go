package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"ragd/internal/types"
	"ragd/pkg/chunker"
	"ragd/pkg/config"
	"ragd/pkg/embedding"
	"ragd/pkg/engine"
	"ragd/pkg/extract"
	"ragd/pkg/retriever"
	"ragd/pkg/store"
	"ragd/pkg/synthesizer"
	"ragd/server"
)

// localUsername is the tenant used when running without the HTTP
// server. It is created on first use.
const localUsername = "local"

func main() {
	_ = godotenv.Load()

	var (
		configPath string
		serve      bool
		addr       string
	)
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.BoolVar(&serve, "serve", false, "Run the HTTP server instead of the interactive prompt")
	flag.StringVar(&addr, "addr", "", "Listen address (overrides config)")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if issues := cfg.Validate(); len(issues) > 0 {
		for _, issue := range issues {
			color.Red("config: %s: %s", issue.Field, issue.Message)
		}
		os.Exit(1)
	}

	if err := run(cfg, serve, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config, serve bool, files []string) error {
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	emb, err := openEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}

	ch, err := chunker.NewWithConfig(chunker.ChunkerConfig{
		ChunkSize:    cfg.Chunker.ChunkSize,
		ChunkOverlap: cfg.Chunker.ChunkOverlap,
	})
	if err != nil {
		return err
	}

	ret, err := retriever.NewWithConfig(emb, st, retriever.RetrieverConfig{Metric: cfg.Retriever.Metric})
	if err != nil {
		return err
	}

	synth, err := openSynthesizer(cfg)
	if err != nil {
		return fmt.Errorf("init synthesizer: %w", err)
	}

	eng := engine.New(ch, emb, st, ret, synth, cfg.Retriever.TopK, nil)

	if serve {
		srv, err := server.New(server.Config{
			Addr:      cfg.Server.Addr,
			JWTSecret: cfg.Server.JWTSecret,
			RateLimit: cfg.Server.RateLimit,
		}, eng, st)
		if err != nil {
			return err
		}
		return srv.Start()
	}

	return runLocal(eng, st, cfg, files)
}

func openStore(cfg *config.Config) (types.FragmentStore, error) {
	switch cfg.Database.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		return store.NewSQLite(cfg.Database.Path)
	case "postgres":
		return store.NewPostgresWithConfig(context.Background(), store.PostgresConfig{
			ConnString: cfg.Database.URL,
			VectorDim:  cfg.Embedding.Dimension,
		})
	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", types.ErrInvalidConfiguration, cfg.Database.Driver)
	}
}

func openEmbedder(cfg *config.Config) (types.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "mock":
		return embedding.NewDeterministic(cfg.Embedding.Dimension), nil
	case "ollama":
		return embedding.NewOllamaWithConfig(embedding.OllamaConfig{
			Model:     cfg.Embedding.Model,
			BaseURL:   cfg.Embedding.BaseURL,
			Dimension: cfg.Embedding.Dimension,
		})
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", types.ErrInvalidConfiguration, cfg.Embedding.Provider)
	}
}

func openSynthesizer(cfg *config.Config) (types.Synthesizer, error) {
	switch cfg.Synthesizer.Mode {
	case "template":
		return synthesizer.NewTemplate(), nil
	case "model":
		return synthesizer.NewModelBackedWithConfig(synthesizer.ModelConfig{
			Model:       cfg.Synthesizer.Model,
			BaseURL:     cfg.Synthesizer.BaseURL,
			MaxTokens:   cfg.Synthesizer.MaxTokens,
			Temperature: cfg.Synthesizer.Temperature,
		})
	default:
		return nil, fmt.Errorf("%w: unknown synthesizer mode %q", types.ErrInvalidConfiguration, cfg.Synthesizer.Mode)
	}
}

// runLocal ingests any files given on the command line and then drops
// into an interactive question loop, all under a single local tenant.
func runLocal(eng *engine.Engine, st types.FragmentStore, cfg *config.Config, files []string) error {
	ctx := context.Background()

	tenant, err := localTenant(ctx, st)
	if err != nil {
		return err
	}

	if len(files) > 0 {
		bar := getProgressBar(len(files), "Ingesting documents...")
		total := 0
		for _, path := range files {
			count, err := ingestFile(ctx, eng, tenant, path)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", path, err)
			}
			total += count
			bar.Add(1)
		}
		bar.Finish()
		color.Green("\nIngested %d files into %d fragments\n", len(files), total)
	}

	color.Cyan("\nAsk about your documents (type 'exit' to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	answerPrompt := color.New(color.FgCyan).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(question, "exit") {
			break
		}
		if question == "" {
			continue
		}

		if cfg.Synthesizer.Streaming {
			stream, err := eng.AnswerStream(ctx, question, tenant)
			if err != nil {
				color.Red("Error: %v\n", err)
				continue
			}
			answerPrompt("Answer: ")
			for chunk := range stream {
				answerPrompt("%s", chunk)
			}
			fmt.Print("\n")
			continue
		}

		spinner := getSpinner("Searching documents...")
		answer, err := eng.Answer(ctx, question, tenant)
		spinner.Finish()
		fmt.Print("\r")
		if err != nil {
			color.Red("Error: %v\n", err)
			continue
		}
		answerPrompt("Answer: %s\n", answer)
	}
	return scanner.Err()
}

func localTenant(ctx context.Context, st types.FragmentStore) (int64, error) {
	user, err := st.GetUserByName(ctx, localUsername)
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return 0, err
	}
	return st.CreateUser(ctx, localUsername, "")
}

func ingestFile(ctx context.Context, eng *engine.Engine, tenant int64, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	text, err := extract.Text(filepath.Base(path), f)
	if err != nil {
		return 0, err
	}
	return eng.Ingest(ctx, text, filepath.Base(path), tenant)
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
