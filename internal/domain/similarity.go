package domain

// SimilarityResult pairs a candidate ticket with its similarity to a query
// text. Ephemeral, never persisted.
type SimilarityResult struct {
	Ticket      *Ticket
	Cosine      float64
	Jaccard     float64
	Levenshtein float64
	Combined    float64
	IsDuplicate bool
}

// TicketGroup is one cluster produced by similarity grouping. The first
// member is the seed the group was built around.
type TicketGroup struct {
	SeedID  int64
	Members []int64
}

// TicketSearchHit is a coarse candidate returned by the full-text search
// collaborator, ordered by relevance rank.
type TicketSearchHit struct {
	Ticket *Ticket
	Rank   float64
}
