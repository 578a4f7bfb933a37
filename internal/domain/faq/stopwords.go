package faq

// DefaultStopWords is a French function-word list. Entries are folded the
// same way as user text, so accented and bare spellings are equivalent.
var DefaultStopWords = []string{
	"a", "à", "afin", "ai", "aie", "aient", "ainsi", "alors", "as", "au", "aucun", "aucune",
	"auquel", "aura", "aurai", "auraient", "aurait", "aussi", "autre", "autres", "aux",
	"auxquelles", "auxquels", "avait", "avant", "avec", "avez", "avoir", "avons", "ayant",
	"c", "ça", "car", "ce", "ceci", "cela", "celle", "celles", "celui", "cependant", "ces",
	"cet", "cette", "ceux", "chacun", "chacune", "chaque", "chez", "ci", "comme", "comment",
	"d", "dans", "de", "des", "deux", "devrait", "dois", "doit", "donc", "dont", "du",
	"elle", "elles", "en", "encore", "entre", "es", "est", "et", "étaient", "était", "étant",
	"été", "être", "eu", "eux", "fait", "faut",
	"il", "ils", "j", "je", "jusqu", "jusque",
	"l", "la", "là", "laquelle", "le", "lequel", "les", "lesquelles", "lesquels", "leur", "leurs", "lui",
	"m", "ma", "mais", "me", "même", "mes", "moi", "mon",
	"n", "ne", "ni", "nos", "notre", "nous",
	"on", "ont", "ou", "où", "par", "parce", "pas", "peu", "peut", "peuvent", "plus", "pour",
	"pourquoi", "puis", "qu", "quand", "que", "quel", "quelle", "quelles", "quels", "qui", "quoi",
	"s", "sa", "sans", "se", "sera", "ses", "si", "sien", "sienne", "soi", "soit", "son", "sont",
	"sous", "suis", "sur", "t", "tandis", "tous", "tout", "toute", "toutes", "très", "trop",
	"un", "une", "unes", "uns", "voici", "voilà", "y",
}
