package interaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veloraMarket/domain"
	"veloraMarket/internal/worker"
	"veloraMarket/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrMissingProductID = errors.New("product id is required")
	ErrMissingActor     = errors.New("user id or session id is required")
	ErrInvalidType      = errors.New("invalid interaction type")
)

// InteractionRepository is the append-only write contract.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *domain.Interaction) error
}

// TaskQueue accepts post-interaction upkeep work. Submissions fail loudly
// when the queue is saturated instead of being dropped silently.
type TaskQueue interface {
	Submit(task worker.ScoreTask) error
}

type TrackInput struct {
	UserID          string
	SessionID       string
	ProductID       string
	InteractionType domain.InteractionType
	Weight          *float64
}

type Service struct {
	interactionRepo InteractionRepository
	queue           TaskQueue
}

func NewService(interactionRepo InteractionRepository, queue TaskQueue) *Service {
	return &Service{
		interactionRepo: interactionRepo,
		queue:           queue,
	}
}

// Track appends one interaction event. Anonymous events use the session id
// as actor. The follow-up score task is queued after the write; a full
// queue is logged and counted but does not fail the tracking request,
// since the row itself is already durable.
func (s *Service) Track(ctx context.Context, input TrackInput) (*domain.Interaction, error) {
	if input.ProductID == "" {
		return nil, ErrMissingProductID
	}
	if !domain.ValidInteractionType(input.InteractionType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, input.InteractionType)
	}

	userID := input.UserID
	if userID == "" {
		userID = input.SessionID
	}
	if userID == "" {
		return nil, ErrMissingActor
	}

	record := &domain.Interaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		ProductID:       input.ProductID,
		InteractionType: input.InteractionType,
		SessionID:       input.SessionID,
		Weight:          input.Weight,
		OccurredAt:      time.Now(),
	}

	if err := s.interactionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record interaction: %w", err)
	}

	task := worker.ScoreTask{
		UserID:    userID,
		ProductID: input.ProductID,
		QueuedAt:  record.OccurredAt,
	}
	if err := s.queue.Submit(task); err != nil {
		logger.Warn("score task not queued", "product_id", input.ProductID, "error", err)
	}

	return record, nil
}
