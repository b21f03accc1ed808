package metrics

import (
	"context"

	"github.com/agenthands/linkgraph/internal/core/model"
)

// Betweenness computes normalized betweenness centrality with Brandes'
// algorithm over unweighted (hop count) shortest paths, the same policy
// ShortestPath uses. Scores are divided by the (n-1)(n-2)/2 node pairs that
// exclude the node itself, so every value lies in [0, 1].
func Betweenness(ctx context.Context, adj [][]int) ([]float64, error) {
	n := len(adj)
	scores := make([]float64, n)
	if n <= 2 {
		return scores, nil
	}

	sigma := make([]float64, n)
	dist := make([]int, n)
	delta := make([]float64, n)
	pred := make([][]int, n)
	stack := make([]int, 0, n)
	queue := make([]int, 0, n)

	for s := 0; s < n; s++ {
		if err := ctx.Err(); err != nil {
			return nil, model.NewError(model.KindTimeout, "betweenness", "", err)
		}
		for i := 0; i < n; i++ {
			sigma[i] = 0
			dist[i] = -1
			delta[i] = 0
			pred[i] = pred[i][:0]
		}
		sigma[s] = 1
		dist[s] = 0
		stack = stack[:0]
		queue = append(queue[:0], s)

		for head := 0; head < len(queue); head++ {
			v := queue[head]
			stack = append(stack, v)
			for _, w := range adj[v] {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				scores[w] += delta[w]
			}
		}
	}

	// Each unordered pair was counted from both ends.
	scale := 1 / float64((n-1)*(n-2))
	for i := range scores {
		scores[i] *= scale
	}
	return scores, nil
}
