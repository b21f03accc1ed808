package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/linkgraph/internal/core/common"
	"github.com/agenthands/linkgraph/internal/core/model"
	"github.com/agenthands/linkgraph/internal/llm"
	"github.com/agenthands/linkgraph/internal/logger"
)

// maxVocabulary caps how many known values go into a prompt.
const maxVocabulary = 50

// Vocabulary lists the values present in the current graph.
type Vocabulary struct {
	Companies []string
	Positions []string
}

// Translator turns a natural-language question into a filter and a
// human-readable explanation. It performs no graph access itself.
type Translator interface {
	Translate(ctx context.Context, query string, vocab Vocabulary) (model.FilterCriteria, string, error)
}

type filterResponse struct {
	Filter  model.FilterCriteria `json:"filter"`
	Explain string               `json:"explain"`
}

// Extractor asks an LLM for the filter and falls back to Fallback when the
// model fails or answers with something unusable.
type Extractor struct {
	LLM      llm.LLMClient
	Prompt   string
	Fallback Translator
	log      *logger.Logger
}

func NewExtractor(llmClient llm.LLMClient, prompt string, fallback Translator, log *logger.Logger) *Extractor {
	return &Extractor{
		LLM:      llmClient,
		Prompt:   prompt,
		Fallback: fallback,
		log:      logger.OrNop(log),
	}
}

func (e *Extractor) Translate(ctx context.Context, query string, vocab Vocabulary) (model.FilterCriteria, string, error) {
	if strings.TrimSpace(query) == "" {
		return model.FilterCriteria{}, "", model.NewError(model.KindInvalidInput, "translate_query", "", fmt.Errorf("empty query"))
	}

	criteria, explain, err := e.extract(ctx, query, vocab)
	if err == nil {
		return criteria, explain, nil
	}
	if e.Fallback == nil {
		return model.FilterCriteria{}, "", err
	}
	e.log.Warn("llm filter extraction failed, using rules", "error", err)
	return e.Fallback.Translate(ctx, query, vocab)
}

func (e *Extractor) extract(ctx context.Context, query string, vocab Vocabulary) (model.FilterCriteria, string, error) {
	if e.LLM == nil {
		return model.FilterCriteria{}, "", fmt.Errorf("no llm client configured")
	}
	prompt := fmt.Sprintf(e.Prompt, joinHead(vocab.Companies), joinHead(vocab.Positions), query)

	response, err := e.LLM.Generate(ctx, prompt)
	if err != nil {
		return model.FilterCriteria{}, "", fmt.Errorf("failed to generate filter: %w", err)
	}

	result, err := common.ParseJSON[filterResponse](response)
	if err != nil {
		return model.FilterCriteria{}, "", fmt.Errorf("failed to parse filter: %w", err)
	}
	if _, _, err := result.Filter.DateRange(); err != nil {
		result.Filter.DateFrom, result.Filter.DateTo = "", ""
	}
	if result.Filter.MinDegree < 0 {
		result.Filter.MinDegree = 0
	}
	if result.Explain == "" {
		result.Explain = describe(result.Filter)
	}
	return result.Filter, result.Explain, nil
}

func joinHead(values []string) string {
	if len(values) > maxVocabulary {
		values = values[:maxVocabulary]
	}
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}

// describe renders an explanation for a filter.
func describe(f model.FilterCriteria) string {
	var parts []string
	if len(f.Companies) > 0 {
		parts = append(parts, "filtering by companies: "+strings.Join(f.Companies, ", "))
	}
	if len(f.Positions) > 0 {
		parts = append(parts, "filtering by positions: "+strings.Join(f.Positions, ", "))
	}
	if f.Location != "" {
		parts = append(parts, "filtering by location: "+f.Location)
	}
	if f.MinDegree > 0 {
		parts = append(parts, fmt.Sprintf("minimum %d connections", f.MinDegree))
	}
	if f.DateFrom != "" {
		parts = append(parts, "connected since "+f.DateFrom)
	}
	if f.DateTo != "" {
		parts = append(parts, "connected until "+f.DateTo)
	}
	if len(parts) == 0 {
		return "No specific filters detected. Showing full network."
	}
	return "Applied filters: " + strings.Join(parts, "; ")
}
