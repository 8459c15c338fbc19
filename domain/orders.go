package domain

import "time"

// CREATE TABLE public.order_items (
//     id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//     order_id   UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
//     product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
//     quantity   INTEGER NOT NULL,
//     price      NUMERIC(10,2) NOT NULL
// );

// OrderItem is read by the trending cold-start fallback as a weak
// popularity proxy. The checkout flow that writes these rows lives outside
// this service.
type OrderItem struct {
	ID        string  `gorm:"primaryKey;column:id" json:"id"`
	OrderID   string  `gorm:"column:order_id;not null" json:"order_id"`
	ProductID string  `gorm:"column:product_id;not null;index" json:"product_id"`
	Quantity  int     `gorm:"column:quantity;not null" json:"quantity"`
	Price     float64 `gorm:"column:price;type:numeric" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// CartItem rows serve the same fallback purpose as order items.
type CartItem struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	UserID    string    `gorm:"column:user_id;not null" json:"user_id"`
	ProductID string    `gorm:"column:product_id;not null;index" json:"product_id"`
	Quantity  int       `gorm:"column:quantity;not null" json:"quantity"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
