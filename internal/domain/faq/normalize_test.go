package faq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer(NormalizerOptions{Brand: "EXCEL Vision", StripPunctuation: true})

	cases := []struct {
		name string
		in   string
		out  string
	}{
		{name: "pronoun becomes brand", in: "  Quels sont VOS horaires ?  ", out: "quels sont excel vision horaires"},
		{name: "hyphenated pronoun", in: "Où êtes-vous situés ?", out: "ou etes excel vision situes"},
		{name: "whole words only", in: "toujours tutu", out: "toujours tutu"},
		{name: "accents fold", in: "Écoute", out: "ecoute"},
		{name: "apostrophe splits", in: "Quelle est l'adresse ?", out: "quelle est l adresse"},
		{name: "empty", in: "", out: ""},
		{name: "punctuation only", in: "?!...", out: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.out, n.Normalize(tc.in))
		})
	}
}

func TestNormalizer_KeepsPunctuationWhenAsked(t *testing.T) {
	n := NewNormalizer(NormalizerOptions{StripPunctuation: false})
	require.Equal(t, "excel vision etes ou ?", n.Normalize("Vous   êtes où ?"))
}

func TestNormalizer_AccentInsensitive(t *testing.T) {
	for _, lemmatize := range []bool{false, true} {
		n := NewNormalizer(NormalizerOptions{StripPunctuation: true, Lemmatize: lemmatize})
		require.Equal(t, n.Normalize("Écoute"), n.Normalize("ecoute"))
		require.Equal(t, n.Normalize("Quels sont vos délais de livraison ?"), n.Normalize("quels sont vos delais de livraison"))
	}
}

func TestNormalizer_Idempotent(t *testing.T) {
	inputs := []string{
		"Quels sont vos horaires d'ouverture ?",
		"Comment ça va ?",
		"Au revoir et merci !",
		"Tu es où ? Tes bureaux ? Ton adresse ?",
		"ÉLÈVES, Élèves, élèves",
		"Il tue le temps",
		"Est-ce que je peux payer par carte bancaire ?",
		"ℌello ﬁne ½",
		"   ",
		"12 rue de la Paix, 75002 Paris",
	}
	options := []NormalizerOptions{
		{StripPunctuation: true},
		{StripPunctuation: false},
		{StripPunctuation: true, Lemmatize: true},
		{Brand: "Clinique Ève", StripPunctuation: true, Lemmatize: true},
	}
	for _, opts := range options {
		n := NewNormalizer(opts)
		for _, in := range inputs {
			once := n.Normalize(in)
			require.Equal(t, once, n.Normalize(once), "input %q opts %+v", in, opts)
		}
	}
}

func TestNormalizer_LemmatizeDropsStopWords(t *testing.T) {
	n := NewNormalizer(NormalizerOptions{StripPunctuation: true, Lemmatize: true})
	require.Equal(t, "", n.Normalize("le la les et un une pour que en des"))
	require.NotEmpty(t, n.Normalize("bonjour"))
	require.NotContains(t, n.Normalize("Quels sont vos horaires ?"), "quels")
}

func TestNormalizer_BrandPronounClash(t *testing.T) {
	n := NewNormalizer(NormalizerOptions{Brand: "Chez Vous", StripPunctuation: true})
	require.Equal(t, "vous", n.Normalize("vous"))
	once := n.Normalize("tu")
	require.Equal(t, "chez vous", once)
	require.Equal(t, once, n.Normalize(once))
}

func TestNormalizer_EmbeddingText(t *testing.T) {
	plain := NewNormalizer(NormalizerOptions{Brand: "EXCEL Vision", StripPunctuation: true})
	require.Equal(t, "quels sont horaires", plain.EmbeddingText(plain.Normalize("Quels sont vos horaires ?")))
	require.Equal(t, "horaires", plain.EmbeddingText(plain.Normalize("horaires")))
	require.Equal(t, "excel vision", plain.EmbeddingText(plain.Normalize("vous")))
	require.Equal(t, "", plain.EmbeddingText(""))

	lemma := NewNormalizer(NormalizerOptions{Brand: "Clinique Vision", StripPunctuation: true, Lemmatize: true})
	require.Equal(t, lemma.Normalize("horaires"), lemma.EmbeddingText(lemma.Normalize("Quels sont vos horaires ?")))
	text := lemma.EmbeddingText(lemma.Normalize("Vos lunettes"))
	require.NotEmpty(t, text)
	require.NotContains(t, text, "cliniq")
	require.NotContains(t, text, "vision")
}
