package faq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testCatalog(entries ...Entry) *Catalog {
	for i := range entries {
		if entries[i].lexicon == "" {
			entries[i].lexicon = entries[i].Normalized
		}
	}
	return &Catalog{entries: entries, dimension: 2}
}

func TestMatcher_Match(t *testing.T) {
	catalog := testCatalog(
		Entry{ID: 1, Answer: "first", Normalized: "horair", Embedding: []float32{1, 0}},
		Entry{ID: 2, Answer: "second", Normalized: "adress", Embedding: []float32{0, 1}},
		Entry{ID: 3, Answer: "twin", Normalized: "horair bis", Embedding: []float32{1, 0}},
	)
	m := Matcher{Threshold: 0.7}

	t.Run("best above threshold", func(t *testing.T) {
		res := m.Match("adress", []float32{0.1, 1}, catalog)
		require.True(t, res.Matched())
		require.Equal(t, int64(2), res.Entry.ID)
		require.Greater(t, res.Score, 0.9)
	})

	t.Run("tie keeps first entry", func(t *testing.T) {
		res := m.Match("horair", []float32{1, 0}, catalog)
		require.True(t, res.Matched())
		require.Equal(t, int64(1), res.Entry.ID)
		require.InDelta(t, 1.0, res.Score, 1e-9)
	})

	t.Run("below threshold", func(t *testing.T) {
		res := Matcher{Threshold: 0.8}.Match("autre", []float32{1, 1}, catalog)
		require.False(t, res.Matched())
		require.Nil(t, res.Entry)
		require.InDelta(t, 0.7071, res.Score, 1e-3)
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		res := Matcher{Threshold: 1}.Match("horair", []float32{1, 0}, catalog)
		require.True(t, res.Matched())
	})

	t.Run("empty query", func(t *testing.T) {
		res := m.Match("", []float32{1, 0}, catalog)
		require.False(t, res.Matched())
		require.Zero(t, res.Score)
	})

	t.Run("empty catalog", func(t *testing.T) {
		res := m.Match("horair", []float32{1, 0}, &Catalog{})
		require.False(t, res.Matched())
	})
}

func TestMatcher_KeywordWeight(t *testing.T) {
	catalog := testCatalog(
		Entry{ID: 1, Answer: "hours", Normalized: "horair ouvertur", Embedding: []float32{1, 0}},
		Entry{ID: 2, Answer: "delivery", Normalized: "delai livraison", Embedding: []float32{0.8, 0.6}},
	)
	query := []float32{0.6, 0.8}

	plain := Matcher{Threshold: 0.7}.Match("delai livraison", query, catalog)
	require.True(t, plain.Matched())
	require.Equal(t, int64(2), plain.Entry.ID)
	require.InDelta(t, 0.96, plain.Score, 1e-6)

	hybrid := Matcher{Threshold: 0.7, KeywordWeight: 0.5}.Match("delai livraison", query, catalog)
	require.True(t, hybrid.Matched())
	require.Equal(t, int64(2), hybrid.Entry.ID)
	require.InDelta(t, 0.98, hybrid.Score, 1e-6)

	semantic := Matcher{Threshold: 0.45}.Match("horair", []float32{0, 1}, catalog)
	require.True(t, semantic.Matched())
	require.Equal(t, int64(2), semantic.Entry.ID)

	lexical := Matcher{Threshold: 0.45, KeywordWeight: 0.5}.Match("horair", []float32{0, 1}, catalog)
	require.True(t, lexical.Matched())
	require.Equal(t, int64(1), lexical.Entry.ID)
	require.InDelta(t, 0.5, lexical.Score, 1e-9)
}
