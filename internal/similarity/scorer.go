package similarity

import "math"

// Weights controls how the three metrics blend into the combined score.
type Weights struct {
	Cosine      float64
	Jaccard     float64
	Levenshtein float64
}

// DefaultWeights returns the standard metric blend.
func DefaultWeights() Weights {
	return Weights{Cosine: 0.5, Jaccard: 0.3, Levenshtein: 0.2}
}

func (w Weights) sum() float64 {
	return w.Cosine + w.Jaccard + w.Levenshtein
}

// Scores carries the per-metric and combined similarity of one text pair.
// Every value lies in [0,1].
type Scores struct {
	Cosine      float64
	Jaccard     float64
	Levenshtein float64
	Combined    float64
}

// Scorer computes text similarity over normalized token sets. Stateless
// after construction and safe for concurrent use.
type Scorer struct {
	norm    *Normalizer
	weights Weights
}

// NewScorer builds a scorer. Non-positive weight sums fall back to defaults.
func NewScorer(norm *Normalizer, weights Weights) *Scorer {
	if weights.sum() <= 0 {
		weights = DefaultWeights()
	}
	return &Scorer{norm: norm, weights: weights}
}

// Normalizer exposes the underlying text normalizer.
func (s *Scorer) Normalizer() *Normalizer {
	return s.norm
}

// termFrequency builds the token occurrence vector for one text.
func termFrequency(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	return tf
}

// Cosine is the term-frequency cosine similarity of the two texts. Zero
// when either vector is empty.
func (s *Scorer) Cosine(a, b string) float64 {
	return cosine(termFrequency(s.norm.Process(a)), termFrequency(s.norm.Process(b)))
}

func cosine(va, vb map[string]int) float64 {
	if len(va) == 0 || len(vb) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for tok, count := range va {
		normA += float64(count * count)
		if other, ok := vb[tok]; ok {
			dot += float64(count * other)
		}
	}
	for _, count := range vb {
		normB += float64(count * count)
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Jaccard is the set-overlap similarity of the two token sets. Two empty
// documents count as identical.
func (s *Scorer) Jaccard(a, b string) float64 {
	return jaccard(s.norm.Process(a), s.norm.Process(b))
}

func jaccard(ta, tb []string) float64 {
	setA := make(map[string]struct{}, len(ta))
	for _, tok := range ta {
		setA[tok] = struct{}{}
	}
	setB := make(map[string]struct{}, len(tb))
	for _, tok := range tb {
		setB[tok] = struct{}{}
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// Levenshtein is the edit-distance similarity of the normalized strings,
// 1 - distance/max(len). Two empty strings count as identical.
func (s *Scorer) Levenshtein(a, b string) float64 {
	return levenshteinSimilarity(s.norm.Normalize(a), s.norm.Normalize(b))
}

func levenshteinSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	sim := 1 - float64(levenshtein(ra, rb))/float64(longest)
	if sim < 0 {
		return 0
	}
	return sim
}

// levenshtein computes edit distance with a two-row matrix.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Combined blends the three metrics with the configured weights. Symmetric
// in its arguments; identical non-empty texts score 1.0.
func (s *Scorer) Combined(a, b string) float64 {
	return s.Compare(a, b).Combined
}

// Compare computes all metrics for one text pair in a single pass over the
// normalized forms.
func (s *Scorer) Compare(a, b string) Scores {
	normA, normB := s.norm.Normalize(a), s.norm.Normalize(b)
	tokensA, tokensB := s.norm.Process(normA), s.norm.Process(normB)

	scores := Scores{
		Cosine:      cosine(termFrequency(tokensA), termFrequency(tokensB)),
		Jaccard:     jaccard(tokensA, tokensB),
		Levenshtein: levenshteinSimilarity(normA, normB),
	}
	w := s.weights
	scores.Combined = (scores.Cosine*w.Cosine + scores.Jaccard*w.Jaccard + scores.Levenshtein*w.Levenshtein) / w.sum()
	return scores
}
