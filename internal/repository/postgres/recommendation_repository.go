package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"veloraMarket/domain"

	"gorm.io/gorm"
)

const (
	defaultLookbackHours   = 24 * 14
	defaultMaxSeedProducts = 50

	collaborativeCap = 100
	trendingCap      = 50

	// Below this many distinct products with interaction signal the
	// trending window is considered too sparse and cart/order aggregates
	// are merged in as weak popularity proxies.
	trendingSparsityThreshold = 8
)

type RecommendationRepositoryOptions struct {
	LookbackHours   int
	MaxSeedProducts int
}

type RecommendationRepository struct {
	DB      *gorm.DB
	options RecommendationRepositoryOptions
}

func NewRecommendationRepository(db *gorm.DB, options RecommendationRepositoryOptions) *RecommendationRepository {
	if options.LookbackHours <= 0 {
		options.LookbackHours = defaultLookbackHours
	}
	if options.MaxSeedProducts <= 0 {
		options.MaxSeedProducts = defaultMaxSeedProducts
	}

	return &RecommendationRepository{
		DB:      db,
		options: options,
	}
}

// aggregateRow is the shape of SUM(...) GROUP BY product_id reads. Typed
// here so nothing loosely typed leaks past the adapter.
type aggregateRow struct {
	ProductID string  `gorm:"column:product_id"`
	Score     float64 `gorm:"column:score"`
}

func (r *RecommendationRepository) FetchUserInteractions(ctx context.Context, userID string) ([]domain.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	cutoff := time.Now().Add(-time.Duration(r.options.LookbackHours) * time.Hour)

	var interactions []domain.Interaction
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND occurred_at > ?", userID, cutoff).
		Order("occurred_at DESC").
		Limit(r.options.MaxSeedProducts).
		Find(&interactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user interactions: %w", err)
	}

	return interactions, nil
}

func (r *RecommendationRepository) FetchCollaborativeSignals(ctx context.Context, seedProductIDs []string, excludeUserID string) ([]domain.CollaborativeSignal, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if len(seedProductIDs) == 0 {
		return []domain.CollaborativeSignal{}, nil
	}

	seedUserQuery := r.DB.WithContext(ctx).
		Model(&domain.Interaction{}).
		Distinct("user_id").
		Where("product_id IN ?", seedProductIDs)
	if excludeUserID != "" {
		seedUserQuery = seedUserQuery.Where("user_id <> ?", excludeUserID)
	}

	var seedUserIDs []string
	if err := seedUserQuery.Pluck("user_id", &seedUserIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch seed users: %w", err)
	}

	if len(seedUserIDs) == 0 {
		return []domain.CollaborativeSignal{}, nil
	}

	// Missing weights count as 1, mirroring the engine's default for
	// unweighted interactions.
	var rows []aggregateRow
	err := r.DB.WithContext(ctx).
		Model(&domain.Interaction{}).
		Select("product_id, SUM(COALESCE(weight, 1)) AS score").
		Where("user_id IN ?", seedUserIDs).
		Where("product_id NOT IN ?", seedProductIDs).
		Group("product_id").
		Order("score DESC").
		Limit(collaborativeCap).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collaborative signals: %w", err)
	}

	return toSignals(rows), nil
}

func (r *RecommendationRepository) FetchTrendingSignals(ctx context.Context, hours int) ([]domain.CollaborativeSignal, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	var interactionRows []aggregateRow
	err := r.DB.WithContext(ctx).
		Model(&domain.Interaction{}).
		Select("product_id, SUM(COALESCE(weight, 1)) AS score").
		Where("occurred_at > ?", cutoff).
		Group("product_id").
		Order("score DESC").
		Limit(trendingCap).
		Scan(&interactionRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending interactions: %w", err)
	}

	if len(interactionRows) >= trendingSparsityThreshold {
		return toSignals(interactionRows), nil
	}

	// Cold-start guard: a freshly seeded catalog has almost no interaction
	// log, so cart and order quantities stand in for popularity.
	var cartRows []aggregateRow
	err = r.DB.WithContext(ctx).
		Model(&domain.CartItem{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS score").
		Group("product_id").
		Order("score DESC").
		Limit(trendingCap).
		Scan(&cartRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart aggregates: %w", err)
	}

	var orderRows []aggregateRow
	err = r.DB.WithContext(ctx).
		Model(&domain.OrderItem{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS score").
		Group("product_id").
		Order("score DESC").
		Limit(trendingCap).
		Scan(&orderRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order aggregates: %w", err)
	}

	merged := mergeTrendingAggregates(toSignals(interactionRows), toSignals(cartRows), toSignals(orderRows))
	if len(merged) > trendingCap {
		merged = merged[:trendingCap]
	}

	return merged, nil
}

func (r *RecommendationRepository) FetchProductMetadata(ctx context.Context, productIDs []string) ([]domain.ProductMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if len(productIDs) == 0 {
		return []domain.ProductMetadata{}, nil
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).
		Where("id IN ?", productIDs).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product metadata: %w", err)
	}

	metadata := make([]domain.ProductMetadata, 0, len(products))
	for _, product := range products {
		metadata = append(metadata, product.Metadata())
	}

	return metadata, nil
}

func (r *RecommendationRepository) FetchCategoryProducts(ctx context.Context, categoryID, excludeProductID string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var productIDs []string
	err := r.DB.WithContext(ctx).
		Model(&domain.Product{}).
		Where("category_id = ? AND id <> ? AND is_active = ? AND inventory > 0", categoryID, excludeProductID, true).
		Order("created_at DESC").
		Limit(limit).
		Pluck("id", &productIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category products: %w", err)
	}

	return productIDs, nil
}

func toSignals(rows []aggregateRow) []domain.CollaborativeSignal {
	signals := make([]domain.CollaborativeSignal, 0, len(rows))
	for _, row := range rows {
		signals = append(signals, domain.CollaborativeSignal{
			ProductID: row.ProductID,
			Score:     row.Score,
		})
	}
	return signals
}

// mergeTrendingAggregates sums the per-product scores of every source
// additively and re-sorts descending. First-seen order breaks ties.
func mergeTrendingAggregates(sources ...[]domain.CollaborativeSignal) []domain.CollaborativeSignal {
	totals := make(map[string]float64)
	order := make([]string, 0)

	for _, source := range sources {
		for _, signal := range source {
			if _, seen := totals[signal.ProductID]; !seen {
				order = append(order, signal.ProductID)
			}
			totals[signal.ProductID] += signal.Score
		}
	}

	merged := make([]domain.CollaborativeSignal, 0, len(order))
	for _, productID := range order {
		merged = append(merged, domain.CollaborativeSignal{
			ProductID: productID,
			Score:     totals[productID],
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	return merged
}
