package community

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/linkgraph/internal/core/model"
)

func TestLPA_DisconnectedComponents(t *testing.T) {
	ids, edges := twoTriangles(false)

	p, err := NewLabelPropagationDetector().Detect(context.Background(), ids, edges)

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}}, p.Communities)
	assert.InDelta(t, 0.5, p.Modularity, 1e-9)
}

func TestLPA_BridgeFloods(t *testing.T) {
	// A single bridge is enough for one label to take over both triangles.
	ids, edges := twoTriangles(true)

	p, err := NewLabelPropagationDetector().Detect(context.Background(), ids, edges)

	require.NoError(t, err)
	assert.Len(t, p.Communities, 1)
}

func TestLPA_SingletonsKept(t *testing.T) {
	ids := []string{"a", "b", "c"}
	edges := []model.Edge{edge("a", "b")}

	p, err := NewLabelPropagationDetector().Detect(context.Background(), ids, edges)

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, p.Communities)
	assert.Equal(t, 1, p.Membership["c"])
}
