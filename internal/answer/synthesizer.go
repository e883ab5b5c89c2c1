// Package answer synthesizes grounded, cited answers from retrieved
// records.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vbelous/shopscout/internal/llm"
	"github.com/vbelous/shopscout/pkg/models"
)

// ErrGenerationUnavailable indicates the generation provider failed. It is
// never converted into a placeholder answer: an ungrounded answer presented
// as grounded is worse than no answer.
var ErrGenerationUnavailable = errors.New("answer generation unavailable")

// InsufficientAnswer is returned verbatim when retrieval produced nothing
// to ground an answer in.
const InsufficientAnswer = "I couldn't find any relevant products to answer your question."

// maxContextChars bounds the prompt context to stay inside the model's
// window.
const maxContextChars = 16000

// Generator is the abstract generation capability. *llm.Client satisfies
// it.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Synthesizer turns a question plus retrieved records into a cited answer.
type Synthesizer struct {
	gen Generator
}

// New creates a Synthesizer over the given generation capability.
func New(gen Generator) *Synthesizer {
	return &Synthesizer{gen: gen}
}

// Answer builds a bounded prompt from the retrieved records only, asks the
// generator, and returns the answer with the citations detected in it.
// An empty retrieval set short-circuits to the fixed insufficiency answer
// without calling the generator at all.
func (s *Synthesizer) Answer(ctx context.Context, question string, retrieved []models.RetrievedRecord) (models.Answer, error) {
	if len(retrieved) == 0 {
		return models.Answer{Text: InsufficientAnswer, Citations: []models.Citation{}}, nil
	}

	user := fmt.Sprintf(llm.UserPromptTemplate, question, formatContext(retrieved))

	text, err := s.gen.Generate(ctx, llm.SystemPrompt, user)
	if err != nil {
		return models.Answer{}, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	citations := detectCitations(text, retrieved)
	slog.Debug("answer synthesized", "retrieved", len(retrieved), "citations", len(citations))

	return models.Answer{Text: text, Citations: citations}, nil
}

// formatContext renders the retrieved records into the prompt, bounded by
// maxContextChars. Only retrieved fields go into the prompt, never
// unretrieved data.
func formatContext(retrieved []models.RetrievedRecord) string {
	var b strings.Builder
	for i, res := range retrieved {
		rec := res.Record
		block := fmt.Sprintf(llm.ProductContextTemplate,
			i+1,
			rec.ID,
			orNA(rec.Title),
			orNA(rec.Brand),
			formatPrice(rec.Price),
			formatRating(rec.Rating),
			orNA(rec.RawText),
		)
		if b.Len()+len(block) > maxContextChars {
			break
		}
		b.WriteString(block)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// detectCitations returns the retrieved records whose identifiers appear
// verbatim in the answer text, preserving retrieval order. Matching is
// exact: partial or garbled identifier mentions do not count.
func detectCitations(text string, retrieved []models.RetrievedRecord) []models.Citation {
	citations := []models.Citation{}
	for _, res := range retrieved {
		if res.Record.ID != "" && strings.Contains(text, res.Record.ID) {
			citations = append(citations, models.Citation{
				RecordID: res.Record.ID,
				Score:    res.Score,
			})
		}
	}
	return citations
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatPrice(p *models.Price) string {
	if p == nil {
		return "N/A"
	}
	amount := strconv.FormatFloat(p.Amount, 'f', 2, 64)
	if p.Currency == "" {
		return amount
	}
	return amount + " " + p.Currency
}

func formatRating(r *float64) string {
	if r == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*r, 'f', 1, 64)
}
