package recommendation

import (
	"context"
	"errors"
	"fmt"

	"veloraMarket/domain"
	"veloraMarket/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	trendingWindowHoursAnonymous = 24 * 7
	trendingWindowHoursBlend     = 24 * 3

	// Per-rank discount applied only on the anonymous fallback path, so a
	// strictly ordered trending list stays strictly ordered with no ties.
	anonymousRankDiscount = 0.02
)

var (
	ErrInvalidLimit     = errors.New("limit must be at least 1")
	ErrMissingProductID = errors.New("product id is required")
)

// Repository is the read contract toward storage. Implementations live in
// internal/repository; the service only depends on these semantics.
type Repository interface {
	// FetchUserInteractions returns the user's most recent interactions
	// within the lookback window, newest first.
	FetchUserInteractions(ctx context.Context, userID string) ([]domain.Interaction, error)

	// FetchCollaborativeSignals aggregates, per product, the total
	// interaction weight of users who touched any seed product, excluding
	// the requesting user and the seed products themselves. Descending.
	FetchCollaborativeSignals(ctx context.Context, seedProductIDs []string, excludeUserID string) ([]domain.CollaborativeSignal, error)

	// FetchTrendingSignals aggregates interaction weight per product inside
	// the window, merging in cart/order quantities when interaction data is
	// too sparse. Descending.
	FetchTrendingSignals(ctx context.Context, hours int) ([]domain.CollaborativeSignal, error)

	FetchProductMetadata(ctx context.Context, productIDs []string) ([]domain.ProductMetadata, error)

	// FetchCategoryProducts lists active products in a category, excluding
	// one product. Used as the last-resort fallback for similar-products.
	FetchCategoryProducts(ctx context.Context, categoryID, excludeProductID string, limit int) ([]string, error)
}

type Service struct {
	repo   Repository
	engine *Engine
}

func NewService(repo Repository, engine *Engine) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
	}
}

// RecommendForUser produces personalized recommendations. Anonymous
// requests fall back to the trending list with a cosmetic per-rank
// discount; known users get the full hybrid blend, padded from trending
// when the blend comes up short.
func (s *Service) RecommendForUser(ctx context.Context, req domain.RecommendationRequest) ([]domain.RecommendationResult, error) {
	if req.Limit < 1 {
		return nil, ErrInvalidLimit
	}

	if req.UserID == "" {
		return s.anonymousTrending(ctx, req.Limit)
	}

	interactions, err := s.repo.FetchUserInteractions(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetch user interactions: %w", err)
	}

	personalScores := s.engine.ScoreInteractions(interactions)
	seedProductIDs := seedOrder(interactions, personalScores)

	// Collaborative and trending reads have no data dependency on each other.
	var (
		collaborative []domain.CollaborativeSignal
		trending      []domain.CollaborativeSignal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var fetchErr error
		collaborative, fetchErr = s.repo.FetchCollaborativeSignals(gctx, seedProductIDs, req.UserID)
		return fetchErr
	})
	g.Go(func() error {
		var fetchErr error
		trending, fetchErr = s.repo.FetchTrendingSignals(gctx, trendingWindowHoursBlend)
		return fetchErr
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch signals: %w", err)
	}

	candidateIDs := unionProductIDs(seedProductIDs, collaborative, trending)

	metadataRows, err := s.repo.FetchProductMetadata(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch product metadata: %w", err)
	}
	metadataByID := indexMetadata(metadataRows)

	contentScores := ComputeContentSignals(seedProductIDs, candidateIDs, metadataByID)

	merged := s.engine.MergeSignals(MergeParams{
		PersonalScores:    personalScores,
		Collaborative:     collaborative,
		Content:           contentSignalsInOrder(candidateIDs, contentScores),
		Trending:          trending,
		Limit:             req.Limit,
		ExcludeProductIDs: toSet(seedProductIDs),
	})

	if len(merged) >= req.Limit {
		return merged, nil
	}

	return padWithTrending(merged, trending, seedProductIDs, req.Limit), nil
}

// SimilarToProduct recommends products similar to a single seed product,
// blending collaborative and content signals. When neither yields anything
// it falls back to other products from the seed's category.
func (s *Service) SimilarToProduct(ctx context.Context, req domain.RecommendationRequest) ([]domain.RecommendationResult, error) {
	if req.ProductID == "" {
		return nil, ErrMissingProductID
	}
	if req.Limit < 1 {
		return nil, ErrInvalidLimit
	}

	seedProductIDs := []string{req.ProductID}

	collaborative, err := s.repo.FetchCollaborativeSignals(ctx, seedProductIDs, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetch collaborative signals: %w", err)
	}

	candidateIDs := unionProductIDs(seedProductIDs, collaborative, nil)

	metadataRows, err := s.repo.FetchProductMetadata(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch product metadata: %w", err)
	}
	metadataByID := indexMetadata(metadataRows)

	contentScores := ComputeContentSignals(seedProductIDs, candidateIDs, metadataByID)

	merged := s.engine.MergeSignals(MergeParams{
		PersonalScores:    map[string]float64{},
		Collaborative:     collaborative,
		Content:           contentSignalsInOrder(candidateIDs, contentScores),
		Limit:             req.Limit,
		ExcludeProductIDs: toSet(seedProductIDs),
	})

	if len(merged) > 0 {
		return merged, nil
	}

	return s.categoryFallback(ctx, metadataByID[req.ProductID], req)
}

// Trending returns the raw 7-day trending list, rounded and truncated.
func (s *Service) Trending(ctx context.Context, limit int) ([]domain.RecommendationResult, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	trending, err := s.repo.FetchTrendingSignals(ctx, trendingWindowHoursAnonymous)
	if err != nil {
		return nil, fmt.Errorf("fetch trending signals: %w", err)
	}

	if len(trending) > limit {
		trending = trending[:limit]
	}

	results := make([]domain.RecommendationResult, 0, len(trending))
	for _, signal := range trending {
		results = append(results, domain.RecommendationResult{
			ProductID: signal.ProductID,
			Score:     round4(signal.Score),
		})
	}

	return results, nil
}

func (s *Service) anonymousTrending(ctx context.Context, limit int) ([]domain.RecommendationResult, error) {
	trending, err := s.repo.FetchTrendingSignals(ctx, trendingWindowHoursAnonymous)
	if err != nil {
		return nil, fmt.Errorf("fetch trending signals: %w", err)
	}

	if len(trending) > limit {
		trending = trending[:limit]
	}

	results := make([]domain.RecommendationResult, 0, len(trending))
	for i, signal := range trending {
		results = append(results, domain.RecommendationResult{
			ProductID: signal.ProductID,
			Score:     round4(signal.Score * (1 - float64(i)*anonymousRankDiscount)),
		})
	}

	return results, nil
}

func (s *Service) categoryFallback(ctx context.Context, seedMeta domain.ProductMetadata, req domain.RecommendationRequest) ([]domain.RecommendationResult, error) {
	if seedMeta.CategoryID == nil {
		return []domain.RecommendationResult{}, nil
	}

	productIDs, err := s.repo.FetchCategoryProducts(ctx, *seedMeta.CategoryID, req.ProductID, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch category products: %w", err)
	}

	logger.Info("similar-products category fallback",
		"product_id", req.ProductID, "category_id", *seedMeta.CategoryID, "count", len(productIDs))

	results := make([]domain.RecommendationResult, 0, len(productIDs))
	for i, productID := range productIDs {
		results = append(results, domain.RecommendationResult{
			ProductID: productID,
			Score:     round4(1 - float64(i)*anonymousRankDiscount),
		})
	}

	return results, nil
}

// seedOrder returns the personal-score product ids in first-seen
// interaction order, keeping candidate discovery deterministic.
func seedOrder(interactions []domain.Interaction, personalScores map[string]float64) []string {
	seeds := make([]string, 0, len(personalScores))
	seen := make(map[string]struct{}, len(personalScores))

	for _, interaction := range interactions {
		if _, ok := personalScores[interaction.ProductID]; !ok {
			continue
		}
		if _, dup := seen[interaction.ProductID]; dup {
			continue
		}
		seen[interaction.ProductID] = struct{}{}
		seeds = append(seeds, interaction.ProductID)
	}

	return seeds
}

func unionProductIDs(seeds []string, collaborative, trending []domain.CollaborativeSignal) []string {
	union := make([]string, 0, len(seeds)+len(collaborative)+len(trending))
	seen := make(map[string]struct{}, len(seeds)+len(collaborative)+len(trending))

	add := func(productID string) {
		if _, dup := seen[productID]; dup {
			return
		}
		seen[productID] = struct{}{}
		union = append(union, productID)
	}

	for _, id := range seeds {
		add(id)
	}
	for _, signal := range collaborative {
		add(signal.ProductID)
	}
	for _, signal := range trending {
		add(signal.ProductID)
	}

	return union
}

func indexMetadata(rows []domain.ProductMetadata) map[string]domain.ProductMetadata {
	byID := make(map[string]domain.ProductMetadata, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	return byID
}

func contentSignalsInOrder(candidateIDs []string, scores map[string]float64) []domain.ContentSignal {
	signals := make([]domain.ContentSignal, 0, len(scores))
	for _, productID := range candidateIDs {
		if overlap, ok := scores[productID]; ok {
			signals = append(signals, domain.ContentSignal{ProductID: productID, Overlap: overlap})
		}
	}
	return signals
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func padWithTrending(merged []domain.RecommendationResult, trending []domain.CollaborativeSignal, seedProductIDs []string, limit int) []domain.RecommendationResult {
	exclude := toSet(seedProductIDs)
	for _, result := range merged {
		exclude[result.ProductID] = struct{}{}
	}

	padded := merged
	for _, signal := range trending {
		if len(padded) >= limit {
			break
		}
		if _, skip := exclude[signal.ProductID]; skip {
			continue
		}
		if signal.Score <= 0 {
			continue
		}
		exclude[signal.ProductID] = struct{}{}
		padded = append(padded, domain.RecommendationResult{
			ProductID: signal.ProductID,
			Score:     round4(signal.Score),
		})
	}

	return padded
}
