package domain

import (
	"time"
)

// CREATE TABLE public.user_interactions (
//     id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//     user_id          TEXT NOT NULL,
//     product_id       UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
//     interaction_type TEXT NOT NULL,
//     session_id       TEXT,
//     weight           NUMERIC,
//     occurred_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
// );

type InteractionType string

const (
	InteractionView           InteractionType = "view"
	InteractionCart           InteractionType = "cart"
	InteractionPurchase       InteractionType = "purchase"
	InteractionWishlist       InteractionType = "wishlist"
	InteractionRemoveWishlist InteractionType = "remove_wishlist"
	InteractionRemoveCart     InteractionType = "remove_cart"
)

// Interaction is one observed user-product event. Rows are append-only;
// nothing in the recommendation path ever mutates them.
type Interaction struct {
	ID              string          `gorm:"primaryKey;column:id" json:"id"`
	UserID          string          `gorm:"column:user_id;not null;index" json:"user_id"`
	ProductID       string          `gorm:"column:product_id;not null;index" json:"product_id"`
	InteractionType InteractionType `gorm:"column:interaction_type;not null" json:"interaction_type"`
	SessionID       string          `gorm:"column:session_id" json:"session_id,omitempty"`
	Weight          *float64        `gorm:"column:weight;type:numeric" json:"weight,omitempty"`
	OccurredAt      time.Time       `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
}

func (Interaction) TableName() string {
	return "user_interactions"
}

// ValidInteractionType reports whether t is one of the tracked event types.
func ValidInteractionType(t InteractionType) bool {
	switch t {
	case InteractionView, InteractionCart, InteractionPurchase,
		InteractionWishlist, InteractionRemoveWishlist, InteractionRemoveCart:
		return true
	}
	return false
}
