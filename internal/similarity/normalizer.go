package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// spanishStopwords is the fixed stopword set applied after tokenization.
var spanishStopwords = map[string]struct{}{}

func init() {
	words := []string{
		"a", "al", "algo", "algunas", "algunos", "ante", "antes", "como",
		"con", "contra", "cual", "cuando", "de", "del", "desde", "donde",
		"durante", "e", "el", "ella", "ellas", "ellos", "en", "entre",
		"era", "es", "esa", "esas", "ese", "eso", "esos", "esta", "estas",
		"este", "esto", "estos", "fue", "ha", "hasta", "hay", "la", "las",
		"le", "les", "lo", "los", "mas", "me", "mi", "mis", "mucho",
		"muchos", "muy", "nada", "ni", "no", "nos", "o", "otra", "otras",
		"otro", "otros", "para", "pero", "poco", "por", "porque", "que",
		"quien", "quienes", "se", "ser", "si", "sin", "sobre", "son", "su",
		"sus", "tambien", "tanto", "te", "tiene", "todo", "todos", "un",
		"una", "unas", "uno", "unos", "y", "ya", "yo",
	}
	for _, w := range words {
		spanishStopwords[w] = struct{}{}
	}
}

// suffixes stripped by the naive stemmer, longest first.
var stemSuffixes = []string{
	"amientos", "imientos", "amiento", "imiento", "aciones", "uciones",
	"adoras", "adores", "idades", "amente", "acion", "ucion", "adora",
	"ancia", "mente", "ables", "ibles", "istas", "ador",
	"idad", "ible", "able", "ista", "ivas", "ivos", "osas", "osos",
	"ando", "iendo", "iva", "ivo", "osa", "oso", "ar", "er", "ir",
	"as", "es", "os",
}

// Normalizer cleans and tokenizes raw ticket text. The zero value is not
// usable; construct with NewNormalizer. Safe for concurrent use.
type Normalizer struct {
	stopwords map[string]struct{}
	stripper  transform.Transformer
}

// NewNormalizer builds a normalizer with the fixed Spanish stopword set plus
// any extra stopwords (already lowercase) supplied by configuration.
func NewNormalizer(extraStopwords []string) *Normalizer {
	stopwords := make(map[string]struct{}, len(spanishStopwords)+len(extraStopwords))
	for w := range spanishStopwords {
		stopwords[w] = struct{}{}
	}
	for _, w := range extraStopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stopwords[w] = struct{}{}
		}
	}
	return &Normalizer{
		stopwords: stopwords,
		stripper:  transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
	}
}

// Normalize lowercases, strips diacritics, replaces non-word characters with
// spaces and collapses whitespace. Empty input yields an empty string.
func (n *Normalizer) Normalize(text string) string {
	text = strings.ToLower(text)
	if stripped, _, err := transform.String(n.stripper, text); err == nil {
		text = stripped
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize splits normalized text on whitespace.
func (n *Normalizer) Tokenize(text string) []string {
	return strings.Fields(text)
}

// RemoveStopwords filters tokens present in the stopword set.
func (n *Normalizer) RemoveStopwords(tokens []string) []string {
	out := tokens[:0:len(tokens)]
	for _, tok := range tokens {
		if _, ok := n.stopwords[tok]; !ok {
			out = append(out, tok)
		}
	}
	return out
}

// Stem reduces a token to an approximate root by iterative suffix stripping.
// Stripping stops once no suffix leaves at least three characters, so the
// result is a fixpoint: Stem(Stem(tok)) == Stem(tok). Tokens that cannot be
// stemmed are returned unchanged.
func (n *Normalizer) Stem(token string) string {
	for {
		stripped := stripOneSuffix(token)
		if stripped == token {
			return token
		}
		token = stripped
	}
}

func stripOneSuffix(token string) string {
	for _, suffix := range stemSuffixes {
		if rest := len(token) - len(suffix); rest >= 3 && strings.HasSuffix(token, suffix) {
			return token[:rest]
		}
	}
	return token
}

// Process composes Normalize, Tokenize, RemoveStopwords and Stem. It is
// idempotent over its own output and returns an empty slice for blank input.
func (n *Normalizer) Process(text string) []string {
	tokens := n.RemoveStopwords(n.Tokenize(n.Normalize(text)))
	for i, tok := range tokens {
		tokens[i] = n.Stem(tok)
	}
	// a stem can land on a stopword ("seres" -> "ser"), filter once more
	return n.RemoveStopwords(tokens)
}
