package summary

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/linkgraph/internal/core/model"
)

type MockLLMClient struct {
	mu       sync.Mutex
	Response string
	Err      error
	Prompts  []string
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func members() []model.Contact {
	return []model.Contact{
		{ID: "1", Label: "Alice", Company: "Acme", Position: "Engineer"},
		{ID: "2", Label: "Bob", Company: "Acme", School: "MIT"},
	}
}

func TestNameCommunityFromLLM(t *testing.T) {
	mockLLM := &MockLLMClient{Response: "```json\n{\"name\": \"Acme Engineers\"}\n```"}
	s := NewSummarizer(mockLLM, "name these:\n%s", nil)

	name := s.NameCommunity(context.Background(), model.Community{ID: 0, DominantCompany: "Acme"}, members())

	assert.Equal(t, "Acme Engineers", name)
	assert.Len(t, mockLLM.Prompts, 1)
	assert.Contains(t, mockLLM.Prompts[0], "- Alice, Engineer, at Acme")
	assert.Contains(t, mockLLM.Prompts[0], "- Bob, at Acme, studied at MIT")
}

func TestNameCommunityAcceptsPlainAnswer(t *testing.T) {
	mockLLM := &MockLLMClient{Response: `"MIT Alumni"`}
	s := NewSummarizer(mockLLM, "%s", nil)

	assert.Equal(t, "MIT Alumni", s.NameCommunity(context.Background(), model.Community{}, members()))
}

func TestNameCommunityFallsBack(t *testing.T) {
	c := model.Community{ID: 3, DominantCompany: "Acme"}

	failing := NewSummarizer(&MockLLMClient{Err: errors.New("boom")}, "%s", nil)
	assert.Equal(t, "Acme network", failing.NameCommunity(context.Background(), c, members()))

	garbage := NewSummarizer(&MockLLMClient{Response: strings.Repeat("x", 200)}, "%s", nil)
	assert.Equal(t, "Acme network", garbage.NameCommunity(context.Background(), c, members()))

	noLLM := NewSummarizer(nil, "%s", nil)
	assert.Equal(t, "Acme network", noLLM.NameCommunity(context.Background(), c, members()))
}

func TestFallbackName(t *testing.T) {
	assert.Equal(t, "MIT alumni", FallbackName(model.Community{DominantSchool: "MIT"}))
	assert.Equal(t, "Berlin contacts", FallbackName(model.Community{DominantLocation: "Berlin"}))
	assert.Equal(t, "Community 7", FallbackName(model.Community{ID: 7}))
}

func TestNameAllSamplesMembers(t *testing.T) {
	contacts := map[string]model.Contact{}
	var ids []string
	for i := 0; i < SampleSize+5; i++ {
		c := model.Contact{ID: string(rune('a' + i)), Label: "Person", Company: "Acme"}
		contacts[c.ID] = c
		ids = append(ids, c.ID)
	}
	mockLLM := &MockLLMClient{Response: `{"name": "Big Group"}`}
	s := NewSummarizer(mockLLM, "%s", nil)

	input := []model.Community{{ID: 0, Members: ids}, {ID: 1, Members: []string{"missing"}, DominantLocation: "Oslo"}}
	out := s.NameAll(context.Background(), input, func(id string) (model.Contact, bool) {
		c, ok := contacts[id]
		return c, ok
	})

	assert.Equal(t, "Big Group", out[0].Name)
	assert.Equal(t, "Oslo contacts", out[1].Name)
	assert.Empty(t, input[0].Name)
	assert.Len(t, mockLLM.Prompts, 1)
	assert.Equal(t, SampleSize, strings.Count(mockLLM.Prompts[0], "- Person"))
}
