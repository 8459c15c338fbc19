package recommendation

import (
	"math"
	"sort"
	"time"

	"veloraMarket/domain"
)

// Weightings holds the per-interaction-type base weights and the per-signal
// blend weights. Every field can be overridden independently: start from
// DefaultWeightings and change what you need.
type Weightings struct {
	View     float64
	Cart     float64
	Purchase float64
	Wishlist float64

	Collaborative float64
	Content       float64
	Trending      float64
}

const (
	defaultViewWeight     = 0.5
	defaultCartWeight     = 0.9
	defaultPurchaseWeight = 1.2
	defaultWishlistWeight = 1.0

	defaultCollaborativeWeight = 0.6
	defaultContentWeight       = 0.4
	defaultTrendingWeight      = 0.25

	defaultDecayHalfLifeHours = 72.0
)

func DefaultWeightings() Weightings {
	return Weightings{
		View:          defaultViewWeight,
		Cart:          defaultCartWeight,
		Purchase:      defaultPurchaseWeight,
		Wishlist:      defaultWishlistWeight,
		Collaborative: defaultCollaborativeWeight,
		Content:       defaultContentWeight,
		Trending:      defaultTrendingWeight,
	}
}

// base returns the interaction-type weight. Types without an affinity
// meaning (remove_cart, remove_wishlist) contribute nothing.
func (w Weightings) base(t domain.InteractionType) float64 {
	switch t {
	case domain.InteractionView:
		return w.View
	case domain.InteractionCart:
		return w.Cart
	case domain.InteractionPurchase:
		return w.Purchase
	case domain.InteractionWishlist:
		return w.Wishlist
	}
	return 0
}

// EngineConfig configures one engine instance. A nil Weightings or a
// non-positive half-life falls back to the documented defaults.
type EngineConfig struct {
	Weightings         *Weightings
	DecayHalfLifeHours float64
}

type Engine struct {
	weightings Weightings
	halfLife   float64
}

func NewEngine(cfg EngineConfig) *Engine {
	weightings := DefaultWeightings()
	if cfg.Weightings != nil {
		weightings = *cfg.Weightings
	}

	halfLife := cfg.DecayHalfLifeHours
	if halfLife <= 0 {
		halfLife = defaultDecayHalfLifeHours
	}

	return &Engine{
		weightings: weightings,
		halfLife:   halfLife,
	}
}

// ScoreInteractions converts raw interaction history into time-decayed
// affinity scores per product. Each interaction contributes
// base * 0.5^(ageHours/halfLife) * weight; repeated interactions on the
// same product accumulate additively with no cap, so heavily engaged
// products dominate on purpose.
func (e *Engine) ScoreInteractions(interactions []domain.Interaction) map[string]float64 {
	now := time.Now()
	scores := make(map[string]float64, len(interactions))

	for _, interaction := range interactions {
		base := e.weightings.base(interaction.InteractionType)
		if base == 0 {
			continue
		}

		ageHours := now.Sub(interaction.OccurredAt).Hours()
		if ageHours < 0 {
			ageHours = 0
		}
		decay := math.Pow(0.5, ageHours/e.halfLife)

		weight := 1.0
		if interaction.Weight != nil {
			weight = *interaction.Weight
		}

		scores[interaction.ProductID] += base * decay * weight
	}

	return scores
}

// MergeParams carries the four signal sources into MergeSignals.
type MergeParams struct {
	PersonalScores    map[string]float64
	Collaborative     []domain.CollaborativeSignal
	Content           []domain.ContentSignal
	Trending          []domain.CollaborativeSignal
	Limit             int
	ExcludeProductIDs map[string]struct{}
}

// MergeSignals blends the signal sources into one ranked list. One
// candidate exists per distinct product across all sources; products in the
// exclusion set never become candidates. Each source accumulates additively
// into its bucket, so a product surfaced twice by the same source sums.
// Personal scores seed the collaborative bucket (past engagement is the
// same semantic bucket as collaborative evidence) and are additionally
// weighted by the view weighting in the total. Candidates with a total of
// zero or less are dropped. Scores are rounded only at output.
func (e *Engine) MergeSignals(params MergeParams) []domain.RecommendationResult {
	candidates := make(map[string]*domain.RecommendationCandidate)
	order := make([]string, 0, len(params.Collaborative)+len(params.Content)+len(params.Trending))

	upsert := func(productID string) *domain.RecommendationCandidate {
		if _, excluded := params.ExcludeProductIDs[productID]; excluded {
			return nil
		}
		if existing, ok := candidates[productID]; ok {
			return existing
		}

		created := &domain.RecommendationCandidate{ProductID: productID}
		candidates[productID] = created
		order = append(order, productID)
		return created
	}

	for _, signal := range params.Collaborative {
		if candidate := upsert(signal.ProductID); candidate != nil {
			candidate.Signals.Collaborative += signal.Score
		}
	}

	for _, signal := range params.Content {
		if candidate := upsert(signal.ProductID); candidate != nil {
			candidate.Signals.Content += signal.Overlap
		}
	}

	for _, signal := range params.Trending {
		if candidate := upsert(signal.ProductID); candidate != nil {
			candidate.Signals.Trending += signal.Score
		}
	}

	// Seed from personal history so past interactions also surface similar items.
	for productID, score := range params.PersonalScores {
		if candidate := upsert(productID); candidate != nil {
			candidate.Signals.Collaborative += score
		}
	}

	results := make([]domain.RecommendationResult, 0, len(order))
	for _, productID := range order {
		candidate := candidates[productID]

		total := candidate.Signals.Collaborative*e.weightings.Collaborative +
			candidate.Signals.Content*e.weightings.Content +
			candidate.Signals.Trending*e.weightings.Trending +
			params.PersonalScores[candidate.ProductID]*e.weightings.View

		if total <= 0 {
			continue
		}

		results = append(results, domain.RecommendationResult{
			ProductID: candidate.ProductID,
			Score:     round4(total),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > params.Limit {
		results = results[:params.Limit]
	}

	return results
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
