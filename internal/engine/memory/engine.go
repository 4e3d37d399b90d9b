package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bazaarlabs/catalog-search/internal/domain"
	"github.com/bazaarlabs/catalog-search/internal/engine"
)

// Engine is an in-memory implementation of engine.SearchEngine used in tests
// and development. It models the same index lifecycle as the backend engine
// (absent until the first rebuild) and approximates its relevance behavior:
// tokenized matching with bounded edit-distance tolerance and a doubled
// weight for name matches. Thread-safe via sync.RWMutex.
type Engine struct {
	mu     sync.RWMutex
	exists bool
	docs   map[string]domain.Document
	order  []string
}

// New creates an in-memory engine with no index.
func New() *Engine {
	return &Engine{}
}

// Ping always succeeds; there is no transport.
func (e *Engine) Ping(_ context.Context) error {
	return nil
}

// Rebuild discards any existing index and creates a fresh empty one.
func (e *Engine) Rebuild(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.exists = true
	e.docs = make(map[string]domain.Document)
	e.order = nil
	return nil
}

// BulkIndex stores all documents. A document with a negative price violates
// the integer field bounds of the schema; like the real backend, valid items
// in the batch are still written but the call reports the item failures.
func (e *Engine) BulkIndex(_ context.Context, docs []domain.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.exists {
		return fmt.Errorf("bulk index: index does not exist: %w", engine.ErrIndex)
	}

	var itemErrs []string
	for i := range docs {
		if docs[i].Price < 0 {
			itemErrs = append(itemErrs, fmt.Sprintf("id=%s: price out of range", docs[i].ID))
			continue
		}
		if _, ok := e.docs[docs[i].ID]; !ok {
			e.order = append(e.order, docs[i].ID)
		}
		e.docs[docs[i].ID] = docs[i]
	}

	if len(itemErrs) > 0 {
		return fmt.Errorf("bulk index: %w: item failures: %s", engine.ErrLoad, strings.Join(itemErrs, "; "))
	}
	return nil
}

// Search scores documents against the keyword terms and returns matches in
// descending score order, ties broken by insertion order.
func (e *Engine) Search(_ context.Context, keyword string) ([]domain.Document, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.exists {
		return nil, fmt.Errorf("search: index does not exist: %w", engine.ErrIndex)
	}

	terms := strings.Fields(strings.ToLower(keyword))
	if len(terms) == 0 {
		// An empty keyword matches nothing, mirroring multi_match semantics.
		return []domain.Document{}, nil
	}

	type scored struct {
		doc   domain.Document
		score float64
		pos   int
	}

	var results []scored
	for pos, id := range e.order {
		doc := e.docs[id]
		score := scoreDocument(doc, terms)
		if score > 0 {
			results = append(results, scored{doc: doc, score: score, pos: pos})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].pos < results[j].pos
	})

	docs := make([]domain.Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, r.doc)
	}
	return docs, nil
}

// State reports the lifecycle state of the in-memory index.
func (e *Engine) State(_ context.Context) (engine.IndexState, int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.exists {
		return engine.StateAbsent, 0, nil
	}
	if len(e.docs) == 0 {
		return engine.StateEmpty, 0, nil
	}
	return engine.StateReady, len(e.docs), nil
}

// scoreDocument sums per-term field scores: name matches count double,
// description and tag matches count once.
func scoreDocument(doc domain.Document, terms []string) float64 {
	nameTokens := strings.Fields(strings.ToLower(doc.Name))
	descTokens := strings.Fields(strings.ToLower(doc.Description))

	var score float64
	for _, term := range terms {
		if matchesAny(term, nameTokens) {
			score += 2
		}
		if matchesAny(term, descTokens) {
			score += 1
		}
		for _, tag := range doc.Tags {
			if fuzzyMatch(term, strings.ToLower(tag)) {
				score += 1
				break
			}
		}
	}
	return score
}

func matchesAny(term string, tokens []string) bool {
	for _, tok := range tokens {
		if fuzzyMatch(term, tok) {
			return true
		}
	}
	return false
}

// fuzzyMatch reports whether term matches token within an edit-distance
// budget that scales with term length, the way automatic fuzziness does:
// exact for short terms, one edit for 3-5 characters, two beyond that.
// Length is counted in runes to match the rune-based distance.
func fuzzyMatch(term, token string) bool {
	maxEdits := 0
	switch {
	case utf8.RuneCountInString(term) >= 6:
		maxEdits = 2
	case utf8.RuneCountInString(term) >= 3:
		maxEdits = 1
	}
	return editDistance(term, token) <= maxEdits
}

// editDistance computes the Levenshtein distance between two strings.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
