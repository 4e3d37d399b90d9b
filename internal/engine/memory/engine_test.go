package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaarlabs/catalog-search/internal/domain"
	"github.com/bazaarlabs/catalog-search/internal/engine"
)

func testDocs() []domain.Document {
	return []domain.Document{
		{ID: "p1", Name: "Red Mug", Description: "A mug that is red", Price: 12, Tags: []string{"kitchen"}},
		{ID: "p2", Name: "Blue Mug", Description: "A mug that is blue", Price: 12, Tags: []string{"kitchen"}},
		{ID: "p3", Name: "Red Shirt", Description: "A shirt that is red", Price: 25, Tags: []string{"apparel"}},
	}
}

func newReadyEngine(t *testing.T) *Engine {
	t.Helper()
	e := New()
	ctx := context.Background()
	require.NoError(t, e.Rebuild(ctx))
	require.NoError(t, e.BulkIndex(ctx, testDocs()))
	return e
}

func TestLifecycleStates(t *testing.T) {
	ctx := context.Background()
	e := New()

	state, count, err := e.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.StateAbsent, state)
	assert.Zero(t, count)

	require.NoError(t, e.Rebuild(ctx))
	state, count, err = e.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.StateEmpty, state)
	assert.Zero(t, count)

	require.NoError(t, e.BulkIndex(ctx, testDocs()))
	state, count, err = e.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.StateReady, state)
	assert.Equal(t, 3, count)
}

func TestRebuildDiscardsDocuments(t *testing.T) {
	ctx := context.Background()
	e := newReadyEngine(t)

	require.NoError(t, e.Rebuild(ctx))

	state, count, err := e.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.StateEmpty, state)
	assert.Zero(t, count)

	docs, err := e.Search(ctx, "mug")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSearchBeforeRebuildFails(t *testing.T) {
	e := New()

	_, err := e.Search(context.Background(), "mug")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrIndex)
}

func TestBulkIndexBeforeRebuildFails(t *testing.T) {
	e := New()

	err := e.BulkIndex(context.Background(), testDocs())
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrIndex)
}

func TestBulkIndexRejectsNegativePrice(t *testing.T) {
	ctx := context.Background()
	e := New()
	require.NoError(t, e.Rebuild(ctx))

	docs := testDocs()
	docs[1].Price = -5

	err := e.BulkIndex(ctx, docs)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrLoad)
	assert.Contains(t, err.Error(), "p2")
}

func TestSearchRelevance(t *testing.T) {
	e := newReadyEngine(t)
	ctx := context.Background()

	tests := []struct {
		keyword string
		wantIDs []string
	}{
		{keyword: "red", wantIDs: []string{"p1", "p3"}},
		{keyword: "mug", wantIDs: []string{"p1", "p2"}},
		{keyword: "redd", wantIDs: []string{"p1", "p3"}},
		{keyword: "nonexistentword", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			docs, err := e.Search(ctx, tt.keyword)
			require.NoError(t, err)

			ids := make([]string, 0, len(docs))
			for _, d := range docs {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSearchEmptyKeyword(t *testing.T) {
	e := newReadyEngine(t)

	for _, keyword := range []string{"", "   "} {
		docs, err := e.Search(context.Background(), keyword)
		require.NoError(t, err)
		assert.Empty(t, docs)
	}
}

func TestSearchNameMatchOutranksDescriptionMatch(t *testing.T) {
	ctx := context.Background()
	e := New()
	require.NoError(t, e.Rebuild(ctx))
	require.NoError(t, e.BulkIndex(ctx, []domain.Document{
		{ID: "d1", Name: "Travel Kettle", Description: "A compact mug companion", Price: 30},
		{ID: "d2", Name: "Coffee Mug", Description: "Ceramic cup", Price: 10},
	}))

	docs, err := e.Search(ctx, "mug")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "d2", docs[0].ID)
	assert.Equal(t, "d1", docs[1].ID)
}

func TestSearchCaseInsensitive(t *testing.T) {
	e := newReadyEngine(t)

	docs, err := e.Search(context.Background(), "RED")
	require.NoError(t, err)
	require.Len(t, docs, 2)
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		term  string
		token string
		want  bool
	}{
		{"red", "red", true},
		{"redd", "red", true},
		{"red", "rod", true},
		{"re", "red", false},
		{"mg", "mug", false},
		{"kettel", "kettle", true},
		{"zzzzzz", "kettle", false},
		// Budgets count runes, not bytes: a 3-rune term gets 1 edit even
		// when it is 9 bytes long.
		{"日本語", "日本語圏", true},
		{"日本語", "中国語", false},
		{"käffee", "kaffee", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, fuzzyMatch(tt.term, tt.token), "fuzzyMatch(%q, %q)", tt.term, tt.token)
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"red", "", 3},
		{"", "red", 3},
		{"red", "red", 0},
		{"red", "redd", 1},
		{"kitten", "sitting", 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, editDistance(tt.a, tt.b), "editDistance(%q, %q)", tt.a, tt.b)
	}
}
