package synthesizer

import (
	"context"
	"strings"

	"ragd/internal/models"
)

// NoDocumentsMessage is returned whenever retrieval comes back empty.
// The synthesizer never fabricates content for an empty corpus.
const NoDocumentsMessage = "No documents found for your account. Please upload a document first."

const answerPrefix = "Answer based on your documents: "

// Template composes the answer by quoting the retrieved fragments
// verbatim. It is the deterministic reference behavior; ModelBacked
// is the drop-in upgrade path.
type Template struct{}

func NewTemplate() Template { return Template{} }

func (Template) Synthesize(_ context.Context, _ string, fragments []models.RetrievedFragment) (string, error) {
	if len(fragments) == 0 {
		return NoDocumentsMessage, nil
	}

	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}
	return answerPrefix + strings.Join(texts, ", "), nil
}

func (t Template) SynthesizeStream(ctx context.Context, question string, fragments []models.RetrievedFragment) (<-chan string, error) {
	answer, err := t.Synthesize(ctx, question, fragments)
	if err != nil {
		return nil, err
	}
	out := make(chan string, 1)
	out <- answer
	close(out)
	return out, nil
}
