package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const rerankPromptFormat = `Order the following scheme snippets from most to least relevant to the query.
Reply with the snippet numbers only, comma separated, nothing else.

Query: %s

%s`

// rerank asks the generator to reorder merged results by relevance. Any
// malformed reply keeps the original score order; reranking is best effort
// and never fails a search.
func (r *Retriever) rerank(ctx context.Context, query string, merged []scored) []scored {
	var b strings.Builder
	for i, m := range merged {
		fmt.Fprintf(&b, "%d. %s\n", i+1, m.hit.Chunk.Content)
	}

	reply, err := r.generator.Generate(ctx, fmt.Sprintf(rerankPromptFormat, query, b.String()))
	if err != nil {
		r.logger.Warn("rerank failed, keeping score order", "error", err)
		return merged
	}

	order, ok := parseOrder(reply, len(merged))
	if !ok {
		r.logger.Warn("rerank reply unparseable, keeping score order", "reply", reply)
		return merged
	}

	out := make([]scored, 0, len(merged))
	for _, idx := range order {
		out = append(out, merged[idx])
	}
	return out
}

// parseOrder parses "2, 1, 3" into zero-based indices. The reply must be a
// permutation of 1..n.
func parseOrder(reply string, n int) ([]int, bool) {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n'
	})
	if len(fields) != n {
		return nil, false
	}

	seen := make(map[int]bool, n)
	order := make([]int, 0, n)
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSuffix(f, "."))
		if err != nil || v < 1 || v > n || seen[v] {
			return nil, false
		}
		seen[v] = true
		order = append(order, v-1)
	}
	return order, true
}
