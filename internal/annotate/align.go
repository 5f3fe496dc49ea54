package annotate

import (
	"sort"
	"strings"

	"github.com/lyri-learn/backend/internal/document"
)

// Align computes word alignment groups between annotated source tokens and
// the words of the line-level translation. Translations reorder and merge
// words, so groups are many-to-many: linked indices are merged into
// connected components over the bipartite link graph, and unlinked tokens
// on either side get singleton groups.
//
// Links come from matching each token's own translation against the
// translated line's words (case-insensitive, each target word consumed
// once per distinct match).
func Align(tokens []document.Token, translatedWords []string) []document.AlignGroup {
	if len(tokens) == 0 || len(translatedWords) == 0 {
		return nil
	}

	lowered := make([]string, len(translatedWords))
	for j, w := range translatedWords {
		lowered[j] = strings.ToLower(w)
	}

	type link struct{ src, dst int }
	var links []link
	used := make([]bool, len(translatedWords))

	for i, tok := range tokens {
		if tok.Translation == "" {
			continue
		}
		// A token translation may itself be several words ("mirar" ->
		// "to look"); link every one that appears in the line translation.
		for _, part := range strings.Fields(strings.ToLower(tok.Translation)) {
			part = strings.Trim(part, ".,!?;:\"'")
			if part == "" {
				continue
			}
			for j, w := range lowered {
				if used[j] || strings.Trim(w, ".,!?;:\"'") != part {
					continue
				}
				links = append(links, link{src: i, dst: j})
				used[j] = true
				break
			}
		}
	}

	// Connected components over the bipartite graph of links.
	type node struct {
		dst bool
		idx int
	}
	adj := make(map[node][]node)
	for _, l := range links {
		s, d := node{false, l.src}, node{true, l.dst}
		adj[s] = append(adj[s], d)
		adj[d] = append(adj[d], s)
	}

	seen := make(map[node]bool)
	var groups []document.AlignGroup

	keys := make([]node, 0, len(adj))
	for n := range adj {
		keys = append(keys, n)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].dst != keys[j].dst {
			return !keys[i].dst
		}
		return keys[i].idx < keys[j].idx
	})

	for _, start := range keys {
		if seen[start] {
			continue
		}
		var srcIdx, dstIdx []int
		queue := []node{start}
		seen[start] = true
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if n.dst {
				dstIdx = append(dstIdx, n.idx)
			} else {
				srcIdx = append(srcIdx, n.idx)
			}
			for _, nb := range adj[n] {
				if !seen[nb] {
					seen[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		sort.Ints(srcIdx)
		sort.Ints(dstIdx)
		groups = append(groups, document.AlignGroup{Src: srcIdx, Dst: dstIdx})
	}

	// Singleton padding: every index appears in at least one group.
	linkedSrc := make(map[int]bool)
	linkedDst := make(map[int]bool)
	for _, g := range groups {
		for _, i := range g.Src {
			linkedSrc[i] = true
		}
		for _, j := range g.Dst {
			linkedDst[j] = true
		}
	}
	for i := range tokens {
		if !linkedSrc[i] {
			groups = append(groups, document.AlignGroup{Src: []int{i}, Dst: []int{}})
		}
	}
	for j := range translatedWords {
		if !linkedDst[j] {
			groups = append(groups, document.AlignGroup{Src: []int{}, Dst: []int{j}})
		}
	}

	return groups
}
