package faq

// Matcher scores a query against every catalog entry.
type Matcher struct {
	Threshold float64
	// KeywordWeight blends token-set overlap into the score. Zero keeps
	// pure cosine similarity.
	KeywordWeight float64
}

// Match returns the best entry when its score reaches the threshold.
// Ties keep the entry that appears first in the catalog.
func (m Matcher) Match(query string, embedding []float32, catalog *Catalog) MatchResult {
	if query == "" || len(embedding) == 0 || catalog.Len() == 0 {
		return MatchResult{}
	}
	weight := m.KeywordWeight
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}

	var (
		best      *Entry
		bestScore float64
	)
	for i := range catalog.entries {
		entry := &catalog.entries[i]
		if len(entry.Embedding) == 0 {
			continue
		}
		score := CosineSimilarity(embedding, entry.Embedding)
		if weight > 0 {
			score = (1-weight)*score + weight*TokenSetRatio(query, entry.lexicon)
		}
		if best == nil || score > bestScore {
			best = entry
			bestScore = score
		}
	}
	if best == nil || bestScore < m.Threshold {
		return MatchResult{Score: bestScore}
	}
	return MatchResult{Entry: best, Score: bestScore}
}
