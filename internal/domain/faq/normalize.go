package faq

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/french"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultPronouns are the second-person forms rewritten to the brand name.
var DefaultPronouns = []string{"vous", "tu", "votre", "vos", "ton", "tes", "toi", "te"}

const maxStemPasses = 8

// NormalizerOptions configures the text canonicalization pipeline.
type NormalizerOptions struct {
	Brand            string
	Pronouns         []string
	StripPunctuation bool
	Lemmatize        bool
	StopWords        []string
}

// Normalizer canonicalizes user and catalog text. Normalize is idempotent
// and safe for concurrent use.
type Normalizer struct {
	replacement string
	pronouns    map[string]struct{}
	stripPunct  bool
	lemmatize   bool
	stopWords   map[string]struct{}
	brandTokens map[string]struct{}
}

// NewNormalizer prepares the lookup tables once.
func NewNormalizer(opts NormalizerOptions) *Normalizer {
	n := &Normalizer{
		stripPunct: opts.StripPunctuation,
		lemmatize:  opts.Lemmatize,
	}
	brand := strings.TrimSpace(opts.Brand)
	if brand == "" {
		brand = DefaultBrand
	}
	n.replacement = n.fold(strings.ToLower(brand))

	brandWords := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(n.replacement, notWordRune) {
		brandWords[w] = struct{}{}
	}
	pronouns := opts.Pronouns
	if len(pronouns) == 0 {
		pronouns = DefaultPronouns
	}
	n.brandTokens = make(map[string]struct{}, 2*len(brandWords))
	for w := range brandWords {
		n.brandTokens[w] = struct{}{}
		if n.lemmatize {
			if stem := stemToFixedPoint(w); stem != "" {
				n.brandTokens[stem] = struct{}{}
			}
		}
	}
	n.pronouns = make(map[string]struct{}, len(pronouns))
	for _, p := range pronouns {
		key := strings.ToLower(strings.TrimSpace(p))
		if key == "" {
			continue
		}
		// a pronoun inside the brand would be rewritten again on the next pass
		if _, clash := brandWords[key]; clash {
			continue
		}
		n.pronouns[key] = struct{}{}
		if folded := stripAccents(key); folded != key {
			n.pronouns[folded] = struct{}{}
		}
	}

	stop := opts.StopWords
	if len(stop) == 0 {
		stop = DefaultStopWords
	}
	n.stopWords = make(map[string]struct{}, len(stop))
	for _, w := range stop {
		key := strings.ToLower(stripAccents(strings.TrimSpace(w)))
		if key != "" {
			n.stopWords[key] = struct{}{}
		}
	}
	return n
}

// Normalize lowercases, rewrites pronouns, folds accents and optionally
// drops punctuation, stop words and inflection.
func (n *Normalizer) Normalize(raw string) string {
	text := strings.ToLower(raw)
	text = n.substitutePronouns(text)
	text = n.fold(text)
	text = n.substitutePronouns(text)
	if n.lemmatize {
		text = n.reduce(text)
	}
	return text
}

// EmbeddingText is the normalized text without brand tokens, which every
// rewritten pronoun produces. Text made only of brand tokens is returned
// unchanged.
func (n *Normalizer) EmbeddingText(normalized string) string {
	if len(n.brandTokens) == 0 || normalized == "" {
		return normalized
	}
	tokens := strings.Fields(normalized)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := n.brandTokens[tok]; ok {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		return normalized
	}
	return strings.Join(kept, " ")
}

// fold strips accents and either punctuation or redundant whitespace.
func (n *Normalizer) fold(text string) string {
	text = strings.ToLower(stripAccents(text))
	if n.stripPunct {
		return cleanPunctuation(text)
	}
	return strings.Join(strings.Fields(text), " ")
}

func (n *Normalizer) substitutePronouns(text string) string {
	if len(n.pronouns) == 0 || text == "" {
		return text
	}
	var builder strings.Builder
	builder.Grow(len(text))
	start := -1
	flush := func(end int) {
		word := text[start:end]
		if _, ok := n.pronouns[word]; ok {
			builder.WriteString(n.replacement)
		} else {
			builder.WriteString(word)
		}
		start = -1
	}
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			flush(i)
		}
		builder.WriteRune(r)
	}
	if start >= 0 {
		flush(len(text))
	}
	return builder.String()
}

func (n *Normalizer) reduce(text string) string {
	tokens := strings.Fields(text)
	kept := tokens[:0]
	for _, tok := range tokens {
		if n.isStopWord(tok) {
			continue
		}
		stem := stemToFixedPoint(tok)
		if stem == "" || n.isStopWord(stem) {
			continue
		}
		if _, ok := n.pronouns[stem]; ok {
			kept = append(kept, tok)
			continue
		}
		kept = append(kept, stem)
	}
	return strings.Join(kept, " ")
}

func (n *Normalizer) isStopWord(word string) bool {
	_, ok := n.stopWords[word]
	return ok
}

func stemToFixedPoint(word string) string {
	current := word
	for i := 0; i < maxStemPasses; i++ {
		next := strings.ToLower(stripAccents(french.Stem(current, true)))
		next = strings.Join(strings.Fields(next), "")
		if next == current || next == "" {
			return next
		}
		current = next
	}
	return current
}

func stripAccents(text string) string {
	if text == "" {
		return text
	}
	// transform.Chain keeps state, so each call builds its own.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

func cleanPunctuation(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	lastSpace := true
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
			lastSpace = false
			continue
		}
		// punctuation, symbols and spaces all collapse to one separator
		if !lastSpace {
			builder.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(builder.String())
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func notWordRune(r rune) bool {
	return !isWordRune(r)
}
