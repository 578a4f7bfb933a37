package faq

import "time"

const (
	// DefaultSimilarityThreshold is the minimum score for a catalog answer.
	DefaultSimilarityThreshold = 0.7
	// DefaultCacheTTL bounds how long a computed reply is reused.
	DefaultCacheTTL = 300 * time.Second
	// DefaultRequestTimeout caps a single reply computation.
	DefaultRequestTimeout = 10 * time.Second
	// DefaultBrand replaces second-person pronouns during normalization.
	DefaultBrand = "EXCEL Vision"
	// DefaultContactPhone is quoted by the contact fallback reply.
	DefaultContactPhone = "0800 200 388"
	// DefaultApology is returned whenever a reply cannot be computed.
	DefaultApology = "Désolé, une erreur est survenue. Veuillez réessayer plus tard."
)

// Config holds runtime knobs for the FAQ service.
type Config struct {
	SimilarityThreshold float64
	KeywordWeight       float64
	CacheTTL            time.Duration
	RequestTimeout      time.Duration
	Brand               string
	ContactPhone        string
	Apology             string
	Welcome             string
	Lemmatize           bool
	StripPunctuation    bool
	AllowEmptyCatalog   bool
	EmbedConcurrency    int
}

// DefaultConfig mirrors the production defaults.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: DefaultSimilarityThreshold,
		CacheTTL:            DefaultCacheTTL,
		RequestTimeout:      DefaultRequestTimeout,
		Brand:               DefaultBrand,
		ContactPhone:        DefaultContactPhone,
		Apology:             DefaultApology,
		Welcome:             WelcomeMessage(DefaultBrand),
		Lemmatize:           true,
		StripPunctuation:    true,
		EmbedConcurrency:    4,
	}
}

// NormalizerOptions derives the normalization pipeline from the config.
func (c Config) NormalizerOptions() NormalizerOptions {
	return NormalizerOptions{
		Brand:            c.Brand,
		StripPunctuation: c.StripPunctuation,
		Lemmatize:        c.Lemmatize,
	}
}

// WelcomeMessage is served on the root route.
func WelcomeMessage(brand string) string {
	return "Bienvenue sur le chatbot d'" + brand + " !"
}
