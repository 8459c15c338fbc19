package postgres

import (
	"testing"

	"veloraMarket/domain"
)

func TestMergeTrendingAggregates_AdditivePerProduct(t *testing.T) {
	interactions := []domain.CollaborativeSignal{
		{ProductID: "p1", Score: 3},
		{ProductID: "p2", Score: 1},
	}
	carts := []domain.CollaborativeSignal{
		{ProductID: "p1", Score: 2},
		{ProductID: "p3", Score: 4},
	}
	orders := []domain.CollaborativeSignal{
		{ProductID: "p2", Score: 5},
	}

	merged := mergeTrendingAggregates(interactions, carts, orders)

	totals := make(map[string]float64, len(merged))
	for _, signal := range merged {
		totals[signal.ProductID] = signal.Score
	}

	// Products carrying interaction signal keep it and gain the proxy
	// contributions on top.
	if totals["p1"] != 5 {
		t.Errorf("p1 should sum interaction+cart contributions, got %v", totals["p1"])
	}
	if totals["p2"] != 6 {
		t.Errorf("p2 should sum interaction+order contributions, got %v", totals["p2"])
	}
	if totals["p3"] != 4 {
		t.Errorf("p3 should carry the cart-only proxy, got %v", totals["p3"])
	}
}

func TestMergeTrendingAggregates_SortedDescending(t *testing.T) {
	merged := mergeTrendingAggregates(
		[]domain.CollaborativeSignal{{ProductID: "low", Score: 1}},
		[]domain.CollaborativeSignal{{ProductID: "high", Score: 10}},
		[]domain.CollaborativeSignal{{ProductID: "mid", Score: 5}},
	)

	for i := 1; i < len(merged); i++ {
		if merged[i].Score > merged[i-1].Score {
			t.Fatalf("merged aggregates must sort descending, got %+v", merged)
		}
	}
	if merged[0].ProductID != "high" {
		t.Errorf("expected high first, got %+v", merged)
	}
}

func TestMergeTrendingAggregates_Empty(t *testing.T) {
	if merged := mergeTrendingAggregates(nil, nil, nil); len(merged) != 0 {
		t.Errorf("empty sources must merge to an empty list, got %+v", merged)
	}
}
