package summary

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/linkgraph/internal/core/common"
	"github.com/agenthands/linkgraph/internal/core/model"
	"github.com/agenthands/linkgraph/internal/llm"
	"github.com/agenthands/linkgraph/internal/logger"
)

// SampleSize caps how many members of a community are shown to the LLM.
const SampleSize = 20

// concurrency bounds parallel LLM calls in NameAll.
const concurrency = 4

type communityName struct {
	Name string `json:"name"`
}

// Summarizer labels communities. Without an LLM it derives a name from the
// dominant company, school or location.
type Summarizer struct {
	LLM    llm.LLMClient
	Prompt string
	log    *logger.Logger
}

func NewSummarizer(llmClient llm.LLMClient, prompt string, log *logger.Logger) *Summarizer {
	return &Summarizer{
		LLM:    llmClient,
		Prompt: prompt,
		log:    logger.OrNop(log),
	}
}

// NameCommunity returns a short label for c. LLM failures fall back to the
// derived name and are not reported as errors.
func (s *Summarizer) NameCommunity(ctx context.Context, c model.Community, members []model.Contact) string {
	if s.LLM == nil || s.Prompt == "" || len(members) == 0 {
		return FallbackName(c)
	}
	name, err := s.generate(ctx, members)
	if err != nil {
		s.log.Warn("community naming failed", "community", c.ID, "error", err)
		return FallbackName(c)
	}
	return name
}

func (s *Summarizer) generate(ctx context.Context, members []model.Contact) (string, error) {
	if len(members) > SampleSize {
		members = members[:SampleSize]
	}
	lines := make([]string, 0, len(members))
	for _, m := range members {
		lines = append(lines, describeMember(m))
	}

	prompt := fmt.Sprintf(s.Prompt, common.BulletList(lines))
	response, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate community name: %w", err)
	}

	result, err := common.ParseJSON[communityName](response)
	if err == nil && strings.TrimSpace(result.Name) != "" {
		return strings.TrimSpace(result.Name), nil
	}
	// A bare, short answer is accepted as the name.
	plain := strings.Trim(strings.TrimSpace(response), `"`)
	if plain != "" && len(plain) <= 60 && !strings.ContainsAny(plain, "{}\n") {
		return plain, nil
	}
	return "", fmt.Errorf("unusable community name response")
}

// NameAll fills Name on every community. lookup resolves member ids.
func (s *Summarizer) NameAll(ctx context.Context, communities []model.Community, lookup func(id string) (model.Contact, bool)) []model.Community {
	out := make([]model.Community, len(communities))
	copy(out, communities)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i := range out {
		eg.Go(func() error {
			members := make([]model.Contact, 0, len(out[i].Members))
			for _, id := range out[i].Members {
				if c, ok := lookup(id); ok {
					members = append(members, c)
				}
			}
			out[i].Name = s.NameCommunity(egCtx, out[i], members)
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

func describeMember(c model.Contact) string {
	parts := []string{c.Label}
	if c.Position != "" {
		parts = append(parts, c.Position)
	}
	if c.Company != "" {
		parts = append(parts, "at "+c.Company)
	}
	if c.School != "" {
		parts = append(parts, "studied at "+c.School)
	}
	if c.Location != "" {
		parts = append(parts, "in "+c.Location)
	}
	return strings.Join(parts, ", ")
}

// FallbackName derives a label from the community's dominant attributes.
func FallbackName(c model.Community) string {
	switch {
	case c.DominantCompany != "":
		return c.DominantCompany + " network"
	case c.DominantSchool != "":
		return c.DominantSchool + " alumni"
	case c.DominantLocation != "":
		return c.DominantLocation + " contacts"
	default:
		return fmt.Sprintf("Community %d", c.ID)
	}
}
