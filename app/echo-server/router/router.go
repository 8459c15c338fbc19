package router

import (
	"veloraMarket/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, optionalAuth echo.MiddlewareFunc) {
	reco := api.Group("/recommendations")

	reco.GET("", handler.ForYou, optionalAuth)
	reco.GET("/similar/:id", handler.Similar, optionalAuth)
	reco.GET("/trending", handler.Trending)
}

func SetInteractionRoutes(api *echo.Group, handler *rest.InteractionHandler, optionalAuth echo.MiddlewareFunc) {
	interactions := api.Group("/interactions")

	interactions.POST("", handler.Track, optionalAuth)
}
