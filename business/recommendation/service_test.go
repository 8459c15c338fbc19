package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"veloraMarket/domain"
)

type fakeRepository struct {
	interactions     []domain.Interaction
	collaborative    []domain.CollaborativeSignal
	trending         []domain.CollaborativeSignal
	metadata         []domain.ProductMetadata
	categoryProducts []string

	failTrending bool
	calls        []string
}

func (f *fakeRepository) FetchUserInteractions(ctx context.Context, userID string) ([]domain.Interaction, error) {
	f.calls = append(f.calls, "interactions")
	return f.interactions, nil
}

func (f *fakeRepository) FetchCollaborativeSignals(ctx context.Context, seedProductIDs []string, excludeUserID string) ([]domain.CollaborativeSignal, error) {
	f.calls = append(f.calls, "collaborative")
	return f.collaborative, nil
}

func (f *fakeRepository) FetchTrendingSignals(ctx context.Context, hours int) ([]domain.CollaborativeSignal, error) {
	f.calls = append(f.calls, "trending")
	if f.failTrending {
		return nil, errors.New("connection refused")
	}
	return f.trending, nil
}

func (f *fakeRepository) FetchProductMetadata(ctx context.Context, productIDs []string) ([]domain.ProductMetadata, error) {
	f.calls = append(f.calls, "metadata")
	return f.metadata, nil
}

func (f *fakeRepository) FetchCategoryProducts(ctx context.Context, categoryID, excludeProductID string, limit int) ([]string, error) {
	f.calls = append(f.calls, "category")
	return f.categoryProducts, nil
}

func newTestService(repo *fakeRepository) *Service {
	return NewService(repo, NewEngine(EngineConfig{}))
}

func TestRecommendForUser_AnonymousDiscountOrdering(t *testing.T) {
	repo := &fakeRepository{
		trending: []domain.CollaborativeSignal{
			{ProductID: "t1", Score: 10},
			{ProductID: "t2", Score: 9},
			{ProductID: "t3", Score: 8},
			{ProductID: "t4", Score: 8},
		},
	}
	service := newTestService(repo)

	results, err := service.RecommendForUser(context.Background(), domain.RecommendationRequest{Limit: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score >= results[i-1].Score {
			t.Errorf("anonymous scores must strictly decrease, got %+v", results)
		}
	}

	// rank 1 gets a 2% discount
	if results[1].Score != round4(9*0.98) {
		t.Errorf("expected discounted score %v, got %v", round4(9*0.98), results[1].Score)
	}
}

func TestRecommendForUser_PersonalizedBlend(t *testing.T) {
	now := time.Now()
	repo := &fakeRepository{
		interactions: []domain.Interaction{
			{UserID: "u1", ProductID: "P1", InteractionType: domain.InteractionView, OccurredAt: now},
			{UserID: "u1", ProductID: "P2", InteractionType: domain.InteractionPurchase, OccurredAt: now},
		},
		collaborative: []domain.CollaborativeSignal{{ProductID: "P3", Score: 2.0}},
		trending:      []domain.CollaborativeSignal{{ProductID: "P4", Score: 1.0}},
		metadata: []domain.ProductMetadata{
			{ID: "P1", TagVector: []string{"a", "b"}, CategoryID: strPtr("C1")},
			{ID: "P2", TagVector: []string{"b"}, CategoryID: strPtr("C2")},
			{ID: "P3", TagVector: []string{"a", "b"}, CategoryID: strPtr("C1")},
			{ID: "P4"},
		},
	}
	service := newTestService(repo)

	results, err := service.RecommendForUser(context.Background(), domain.RecommendationRequest{UserID: "u1", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, result := range results {
		if result.ProductID == "P1" || result.ProductID == "P2" {
			t.Fatalf("seed products must be excluded, got %+v", results)
		}
	}

	if len(results) != 2 {
		t.Fatalf("expected P3 and P4, got %+v", results)
	}

	// P3: collaborative 2.0*0.6 plus content overlap
	// (tags a,b against seed frequencies {a:1, b:2} -> 0.5+1.0, category C1
	// -> +0.75, total 2.25) * 0.4 = 2.1
	if results[0].ProductID != "P3" || results[0].Score != 2.1 {
		t.Errorf("expected P3 at 2.1, got %+v", results[0])
	}

	// P4: trending only, 1.0*0.25
	if results[1].ProductID != "P4" || results[1].Score != 0.25 {
		t.Errorf("expected P4 at 0.25, got %+v", results[1])
	}
}

func TestRecommendForUser_ValidationBeforeStorage(t *testing.T) {
	repo := &fakeRepository{}
	service := newTestService(repo)

	_, err := service.RecommendForUser(context.Background(), domain.RecommendationRequest{UserID: "u1", Limit: 0})
	if !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
	if len(repo.calls) != 0 {
		t.Errorf("no storage calls may happen on invalid input, got %v", repo.calls)
	}
}

func TestRecommendForUser_StorageFailurePropagates(t *testing.T) {
	repo := &fakeRepository{failTrending: true}
	service := newTestService(repo)

	results, err := service.RecommendForUser(context.Background(), domain.RecommendationRequest{Limit: 5})
	if err == nil {
		t.Fatalf("storage failure must not be swallowed, got results %+v", results)
	}
}

func TestRecommendForUser_LimitInvariant(t *testing.T) {
	now := time.Now()
	repo := &fakeRepository{
		interactions: []domain.Interaction{
			{UserID: "u1", ProductID: "P1", InteractionType: domain.InteractionView, OccurredAt: now},
		},
		collaborative: []domain.CollaborativeSignal{
			{ProductID: "c1", Score: 5},
			{ProductID: "c2", Score: 4},
			{ProductID: "c3", Score: 3},
		},
		trending: []domain.CollaborativeSignal{
			{ProductID: "t1", Score: 2},
			{ProductID: "t2", Score: 1},
		},
	}
	service := newTestService(repo)

	results, err := service.RecommendForUser(context.Background(), domain.RecommendationRequest{UserID: "u1", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) > 2 {
		t.Errorf("result length must never exceed the limit, got %d", len(results))
	}
}

func TestSimilarToProduct_ExcludesSeed(t *testing.T) {
	repo := &fakeRepository{
		collaborative: []domain.CollaborativeSignal{
			{ProductID: "seed", Score: 100},
			{ProductID: "other", Score: 1},
		},
		metadata: []domain.ProductMetadata{
			{ID: "seed", TagVector: []string{"boho"}},
			{ID: "other", TagVector: []string{"boho"}},
		},
	}
	service := newTestService(repo)

	results, err := service.SimilarToProduct(context.Background(), domain.RecommendationRequest{ProductID: "seed", Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, result := range results {
		if result.ProductID == "seed" {
			t.Fatalf("seed product must never be recommended as similar to itself")
		}
	}
	if len(results) != 1 || results[0].ProductID != "other" {
		t.Errorf("expected only the other product, got %+v", results)
	}
}

func TestSimilarToProduct_CategoryFallback(t *testing.T) {
	repo := &fakeRepository{
		metadata: []domain.ProductMetadata{
			{ID: "seed", CategoryID: strPtr("C1")},
		},
		categoryProducts: []string{"m1", "m2"},
	}
	service := newTestService(repo)

	results, err := service.SimilarToProduct(context.Background(), domain.RecommendationRequest{ProductID: "seed", Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected category fallback results, got %+v", results)
	}
	if results[0].ProductID != "m1" || results[1].ProductID != "m2" {
		t.Errorf("fallback must keep repository order, got %+v", results)
	}
	if results[1].Score >= results[0].Score {
		t.Errorf("fallback scores must decrease by rank, got %+v", results)
	}
}

func TestSimilarToProduct_Validation(t *testing.T) {
	repo := &fakeRepository{}
	service := newTestService(repo)

	if _, err := service.SimilarToProduct(context.Background(), domain.RecommendationRequest{Limit: 5}); !errors.Is(err, ErrMissingProductID) {
		t.Errorf("expected ErrMissingProductID, got %v", err)
	}
	if _, err := service.SimilarToProduct(context.Background(), domain.RecommendationRequest{ProductID: "p", Limit: 0}); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if len(repo.calls) != 0 {
		t.Errorf("no storage calls may happen on invalid input, got %v", repo.calls)
	}
}

func TestTrending_PassthroughRoundedAndTruncated(t *testing.T) {
	repo := &fakeRepository{
		trending: []domain.CollaborativeSignal{
			{ProductID: "t1", Score: 3.00005},
			{ProductID: "t2", Score: 2},
			{ProductID: "t3", Score: 1},
		},
	}
	service := newTestService(repo)

	results, err := service.Trending(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected truncation to limit, got %+v", results)
	}
	if results[0].Score != 3.0001 {
		t.Errorf("scores must round to 4 decimals, got %v", results[0].Score)
	}
}

func TestPadWithTrending(t *testing.T) {
	merged := []domain.RecommendationResult{{ProductID: "a", Score: 2}}
	trending := []domain.CollaborativeSignal{
		{ProductID: "a", Score: 5},
		{ProductID: "seed", Score: 4},
		{ProductID: "b", Score: 3},
		{ProductID: "c", Score: 2},
	}

	padded := padWithTrending(merged, trending, []string{"seed"}, 3)

	if len(padded) != 3 {
		t.Fatalf("expected list padded to limit, got %+v", padded)
	}
	if padded[1].ProductID != "b" || padded[2].ProductID != "c" {
		t.Errorf("padding must skip seeds and duplicates, got %+v", padded)
	}
}
