package faq

import (
	"fmt"
	"sort"
)

var defaultReplies = map[string]string{
	"bonjour":       "Bonjour ! Comment puis-je vous aider aujourd'hui ?",
	"au revoir":     "Au revoir ! Passez une excellente journée !",
	"merci":         "De rien ! Je suis là pour vous aider.",
	"pardon":        "Pas de problème ! Comment puis-je vous aider ?",
	"comment ça va": "Je suis juste un chatbot, mais merci de demander ! Comment puis-je vous aider aujourd'hui ?",
	"ça va":         "Je suis juste un chatbot, mais merci de demander ! Comment puis-je vous aider aujourd'hui ?",
}

// DefaultReplies returns a copy of the built-in greetings table.
func DefaultReplies() map[string]string {
	out := make(map[string]string, len(defaultReplies))
	for k, v := range defaultReplies {
		out[k] = v
	}
	return out
}

// ContactFallback is the reply used when nothing else applies.
func ContactFallback(brand, phone string) string {
	return fmt.Sprintf("N'étant pas en mesure de répondre à cette question, je peux vous proposer de contacter l'équipe %s au %s.", brand, phone)
}

// DefaultTable answers small talk by exact normalized key.
type DefaultTable struct {
	replies  map[string]string
	fallback string
}

// NewDefaultTable normalizes every key with the query normalizer so lookups
// compare like with like. When two keys collapse to the same text the one
// sorting first wins.
func NewDefaultTable(normalizer *Normalizer, replies map[string]string, fallback string) *DefaultTable {
	keys := make([]string, 0, len(replies))
	for k := range replies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := make(map[string]string, len(replies))
	for _, k := range keys {
		normalized := normalizer.Normalize(k)
		if normalized == "" {
			continue
		}
		if _, exists := table[normalized]; exists {
			continue
		}
		table[normalized] = replies[k]
	}
	return &DefaultTable{replies: table, fallback: fallback}
}

// Lookup finds a canned reply for an already normalized query.
func (t *DefaultTable) Lookup(normalized string) (string, bool) {
	if normalized == "" {
		return "", false
	}
	reply, ok := t.replies[normalized]
	return reply, ok
}

// Fallback returns the contact message.
func (t *DefaultTable) Fallback() string {
	return t.fallback
}

// Resolve returns the canned reply or the fallback.
func (t *DefaultTable) Resolve(normalized string) (string, Source) {
	if reply, ok := t.Lookup(normalized); ok {
		return reply, SourceDefault
	}
	return t.fallback, SourceFallback
}
