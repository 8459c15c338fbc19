package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"veloraMarket/business/interaction"
	"veloraMarket/domain"
	"veloraMarket/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	InteractionHandler struct {
		validate           *validator.Validate
		interactionService InteractionService
		timeout            time.Duration
	}

	InteractionService interface {
		Track(ctx context.Context, input interaction.TrackInput) (*domain.Interaction, error)
	}

	TrackInteractionRequest struct {
		ProductID       string   `json:"product_id" validate:"required"`
		InteractionType string   `json:"interaction_type" validate:"required,oneof=view cart purchase wishlist remove_wishlist remove_cart"`
		SessionID       string   `json:"session_id"`
		Weight          *float64 `json:"weight" validate:"omitempty,gt=0"`
	}
)

func NewInteractionHandler(interactionService InteractionService) *InteractionHandler {
	return &InteractionHandler{
		validate:           validator.New(),
		interactionService: interactionService,
		timeout:            10 * time.Second,
	}
}

// POST /api/v1/interactions
// Logged-in users are identified by their token; anonymous clients must
// send a session_id instead.
func (h *InteractionHandler) Track(c echo.Context) error {
	var req TrackInteractionRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind interaction request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&req); err != nil {
		logger.Error("Failed to validate interaction request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	userID, _ := c.Get("user_id").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	record, err := h.interactionService.Track(ctx, interaction.TrackInput{
		UserID:          userID,
		SessionID:       req.SessionID,
		ProductID:       req.ProductID,
		InteractionType: domain.InteractionType(req.InteractionType),
		Weight:          req.Weight,
	})
	if err != nil {
		if errors.Is(err, interaction.ErrMissingProductID) ||
			errors.Is(err, interaction.ErrMissingActor) ||
			errors.Is(err, interaction.ErrInvalidType) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}

		logger.Error("Failed to track interaction", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(record))
}
