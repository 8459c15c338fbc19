package domain

// CollaborativeSignal is the aggregate interaction weight that users who
// share history with the seed set have put on a product. Computed per
// request, never stored.
type CollaborativeSignal struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
}

// ContentSignal is the tag/category overlap between the seed set and a
// candidate product.
type ContentSignal struct {
	ProductID string  `json:"product_id"`
	Overlap   float64 `json:"overlap"`
}

// RecommendationCandidate accumulates the per-source signal buckets for one
// candidate product while signals are merged.
type RecommendationCandidate struct {
	ProductID string
	Signals   CandidateSignals
}

type CandidateSignals struct {
	Collaborative float64
	Content       float64
	Trending      float64
}

// RecommendationResult is one ranked output entry. Scores are rounded to
// four decimal places and always positive.
type RecommendationResult struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
}

// RecommendationRequest carries the caller's anchor (user or product) and
// the requested result size.
type RecommendationRequest struct {
	UserID    string
	ProductID string
	Limit     int
}
