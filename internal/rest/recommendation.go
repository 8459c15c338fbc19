package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"veloraMarket/business/recommendation"
	"veloraMarket/domain"
	redisrepo "veloraMarket/internal/repository/redis"
	"veloraMarket/pkg/logger"
	"veloraMarket/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	RecommendationHandler struct {
		validate    *validator.Validate
		recoService RecommendationService
		products    ProductResolver
		cache       *redisrepo.TrendingCache
		timeout     time.Duration
	}

	RecommendationService interface {
		RecommendForUser(ctx context.Context, req domain.RecommendationRequest) ([]domain.RecommendationResult, error)
		SimilarToProduct(ctx context.Context, req domain.RecommendationRequest) ([]domain.RecommendationResult, error)
		Trending(ctx context.Context, limit int) ([]domain.RecommendationResult, error)
	}

	ProductResolver interface {
		FindDisplayableByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	}

	RecommendationQuery struct {
		N int `query:"n" validate:"omitempty,min=1,max=50"`
	}

	// RecommendedProduct is one display-ready entry: the full product
	// record plus its recommendation score.
	RecommendedProduct struct {
		domain.Product
		Score float64 `json:"score"`
	}
)

func NewRecommendationHandler(recoService RecommendationService, products ProductResolver, cache *redisrepo.TrendingCache) *RecommendationHandler {
	return &RecommendationHandler{
		validate:    validator.New(),
		recoService: recoService,
		products:    products,
		cache:       cache,
		timeout:     10 * time.Second,
	}
}

// GET /api/v1/recommendations?n=12
func (h *RecommendationHandler) ForYou(c echo.Context) error {
	timer := observe("for_you")
	defer timer()

	var q RecommendationQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if q.N <= 0 {
		q.N = 12
	}

	userID, _ := c.Get("user_id").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	results, err := h.recoService.RecommendForUser(ctx, domain.RecommendationRequest{
		UserID: userID,
		Limit:  q.N,
	})
	if err != nil {
		return h.errorResponse(c, err)
	}

	items, err := h.resolveProducts(ctx, results)
	if err != nil {
		logger.Error("Failed to resolve recommended products", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(items))
}

// GET /api/v1/recommendations/similar/:id?n=8
func (h *RecommendationHandler) Similar(c echo.Context) error {
	timer := observe("similar")
	defer timer()

	productID := c.Param("id")

	var q RecommendationQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if q.N <= 0 {
		q.N = 8
	}

	userID, _ := c.Get("user_id").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	results, err := h.recoService.SimilarToProduct(ctx, domain.RecommendationRequest{
		UserID:    userID,
		ProductID: productID,
		Limit:     q.N,
	})
	if err != nil {
		return h.errorResponse(c, err)
	}

	items, err := h.resolveProducts(ctx, results)
	if err != nil {
		logger.Error("Failed to resolve similar products", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(items))
}

// GET /api/v1/recommendations/trending?n=12
func (h *RecommendationHandler) Trending(c echo.Context) error {
	timer := observe("trending")
	defer timer()

	var q RecommendationQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if q.N <= 0 {
		q.N = 12
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	results, err := h.cachedTrending(ctx, q.N)
	if err != nil {
		return h.errorResponse(c, err)
	}

	items, err := h.resolveProducts(ctx, results)
	if err != nil {
		logger.Error("Failed to resolve trending products", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(items))
}

// cachedTrending consults the short-TTL cache first. Cache failures other
// than a miss are logged and treated as a miss; the repository stays the
// source of truth.
func (h *RecommendationHandler) cachedTrending(ctx context.Context, limit int) ([]domain.RecommendationResult, error) {
	if h.cache != nil {
		cached, err := h.cache.Get(ctx, limit)
		if err == nil {
			metrics.TrendingCacheHits.Inc()
			return cached, nil
		}
		if !errors.Is(err, redisrepo.ErrCacheMiss) {
			logger.Warn("trending cache read failed", "error", err)
		}
		metrics.TrendingCacheMisses.Inc()
	}

	results, err := h.recoService.Trending(ctx, limit)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, limit, results); err != nil {
			logger.Warn("trending cache write failed", "error", err)
		}
	}

	return results, nil
}

// resolveProducts turns ranked (id, score) pairs into display records,
// dropping ids that are no longer active or in stock while keeping score
// order.
func (h *RecommendationHandler) resolveProducts(ctx context.Context, results []domain.RecommendationResult) ([]RecommendedProduct, error) {
	ids := make([]string, 0, len(results))
	for _, result := range results {
		ids = append(ids, result.ProductID)
	}

	products, err := h.products.FindDisplayableByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	items := make([]RecommendedProduct, 0, len(results))
	for _, result := range results {
		product, ok := byID[result.ProductID]
		if !ok {
			continue
		}
		items = append(items, RecommendedProduct{
			Product: product,
			Score:   result.Score,
		})
	}

	return items, nil
}

func (h *RecommendationHandler) errorResponse(c echo.Context, err error) error {
	if errors.Is(err, recommendation.ErrInvalidLimit) || errors.Is(err, recommendation.ErrMissingProductID) {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	logger.Error("Recommendation request failed", err)
	return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
}

func observe(operation string) func() {
	metrics.RecommendationRequests.WithLabelValues(operation).Inc()
	start := time.Now()
	return func() {
		metrics.RecommendationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
