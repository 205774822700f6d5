package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ragd/internal/models"
	"ragd/internal/types"
)

// Engine is the operation surface the request layer calls into. Every
// operation is scoped to the tenant id the caller resolved; the engine
// trusts that value and enforces isolation purely through the store's
// tenant filters.
type Engine struct {
	chunker   types.Chunker
	embedder  types.Embedder
	store     types.FragmentStore
	retriever types.Retriever
	synth     types.Synthesizer
	topK      int
	logger    *log.Logger
}

func New(chunker types.Chunker, embedder types.Embedder, store types.FragmentStore,
	retriever types.Retriever, synth types.Synthesizer, topK int, logger *log.Logger) *Engine {
	if topK <= 0 {
		topK = 2
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[ENGINE] ", log.LstdFlags)
	}
	return &Engine{
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		retriever: retriever,
		synth:     synth,
		topK:      topK,
		logger:    logger,
	}
}

// Ingest chunks the extracted document text, embeds every chunk and
// stores document plus fragments as one unit. It returns the number
// of fragments created.
func (e *Engine) Ingest(ctx context.Context, text, filename string, tenantID int64) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: document text is empty", types.ErrInvalidInput)
	}

	chunks, err := e.chunker.Chunk(text)
	if err != nil {
		return 0, err
	}

	fragments := make([]models.FragmentInput, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := e.embedder.Embed(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("embed fragment: %w", err)
		}
		fragments = append(fragments, models.FragmentInput{Text: chunk, Embedding: vec})
	}

	docID, err := e.store.IngestDocument(ctx, tenantID, filename, time.Now(), fragments)
	if err != nil {
		return 0, err
	}

	e.logger.Printf("ingested %q as document %d for tenant %d (%d fragments)",
		filename, docID, tenantID, len(fragments))
	return len(fragments), nil
}

// Answer retrieves the tenant's nearest fragments for the question and
// synthesizes an answer from them.
func (e *Engine) Answer(ctx context.Context, question string, tenantID int64) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is empty", types.ErrInvalidInput)
	}

	fragments, err := e.retriever.Retrieve(ctx, question, tenantID, e.topK)
	if err != nil {
		return "", err
	}
	return e.synth.Synthesize(ctx, question, fragments)
}

// AnswerStream is Answer with incremental delivery. Synthesizers
// without streaming support fall back to a single chunk.
func (e *Engine) AnswerStream(ctx context.Context, question string, tenantID int64) (<-chan string, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", types.ErrInvalidInput)
	}

	fragments, err := e.retriever.Retrieve(ctx, question, tenantID, e.topK)
	if err != nil {
		return nil, err
	}

	if ss, ok := e.synth.(types.StreamSynthesizer); ok {
		return ss.SynthesizeStream(ctx, question, fragments)
	}

	answer, err := e.synth.Synthesize(ctx, question, fragments)
	if err != nil {
		return nil, err
	}
	out := make(chan string, 1)
	out <- answer
	close(out)
	return out, nil
}

func (e *Engine) Documents(ctx context.Context, tenantID int64) ([]models.Document, error) {
	return e.store.ListDocuments(ctx, tenantID)
}

func (e *Engine) DeleteDocument(ctx context.Context, tenantID, documentID int64) error {
	return e.store.DeleteDocument(ctx, tenantID, documentID)
}
