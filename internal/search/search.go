// Package search ranks documentation pages against free-text queries.
//
// Scoring is additive with fixed weights: the full query matched against the
// label, category and content, plus every query token matched against the
// label and content. Matching is case and accent insensitive.
package search

import (
	"sort"
	"strings"
	"unicode"
)

const (
	weightLabel      = 40
	weightCategory   = 10
	weightContent    = 15
	weightTokenLabel = 8
	weightTokenBody  = 2

	// Runes of context kept around a content match.
	snippetBefore = 70
	snippetAfter  = 90

	ellipsis = "…"
)

// DefaultLimit is the result cap used by callers that have no explicit limit.
const DefaultLimit = 10

// Search scores docs against query and returns at most limit hits, highest
// score first. Hits with equal scores keep the order of docs. A blank query
// or a non-positive limit yields no hits.
func Search(docs []Document, query string, limit int) []Hit {
	q := Normalize(query)
	if q == "" || limit <= 0 {
		return []Hit{}
	}
	tokens := strings.Fields(q)

	hits := make([]Hit, 0)
	for i := range docs {
		doc := &docs[i]
		label := Normalize(doc.Label)
		category := Normalize(doc.Category)
		content := ""
		if doc.Content != nil {
			content = Normalize(*doc.Content)
		}

		score := 0
		if strings.Contains(label, q) {
			score += weightLabel
		}
		if category != "" && strings.Contains(category, q) {
			score += weightCategory
		}
		if content != "" && strings.Contains(content, q) {
			score += weightContent
		}
		for _, tok := range tokens {
			if strings.Contains(label, tok) {
				score += weightTokenLabel
			}
			if content != "" && strings.Contains(content, tok) {
				score += weightTokenBody
			}
		}
		if score <= 0 {
			continue
		}

		hit := Hit{
			ID:       doc.ID,
			Label:    doc.Label,
			Category: doc.Category,
			Href:     doc.Href,
			Score:    score,
		}
		if doc.Content != nil {
			hit.Snippet = snippet(*doc.Content, q)
		}
		hits = append(hits, hit)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// snippet returns the excerpt of content around the first occurrence of the
// normalized query q. The content keeps its case and accents; only its
// whitespace is collapsed. Accented content therefore does not match an
// accent-stripped query here even when the scorer counted it.
func snippet(content, q string) string {
	text := []rune(collapseSpaces(content))
	if len(text) == 0 {
		return ""
	}
	lower := make([]rune, len(text))
	for i, r := range text {
		lower[i] = unicode.ToLower(r)
	}
	needle := []rune(q)

	idx := indexRunes(lower, needle)
	if idx < 0 {
		return ""
	}

	start := max(0, idx-snippetBefore)
	end := min(len(text), idx+len(needle)+snippetAfter)

	var b strings.Builder
	if start > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(string(text[start:end]))
	if end < len(text) {
		b.WriteString(ellipsis)
	}
	return b.String()
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}

// Engine holds an immutable snapshot of the document collection.
type Engine struct {
	docs []Document
}

// NewEngine copies docs into a new Engine.
func NewEngine(docs []Document) *Engine {
	snapshot := make([]Document, len(docs))
	copy(snapshot, docs)
	return &Engine{docs: snapshot}
}

// Search runs Search over the engine's snapshot.
func (e *Engine) Search(query string, limit int) []Hit {
	return Search(e.docs, query, limit)
}

// Documents returns a copy of the collection.
func (e *Engine) Documents() []Document {
	out := make([]Document, len(e.docs))
	copy(out, e.docs)
	return out
}

// Len reports the number of documents in the snapshot.
func (e *Engine) Len() int {
	return len(e.docs)
}
