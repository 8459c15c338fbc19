package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.products (
//     id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//     name             TEXT NOT NULL,
//     slug             TEXT NOT NULL UNIQUE,
//     description      TEXT,
//     price            NUMERIC(10,2) NOT NULL,
//     compare_at_price NUMERIC(10,2),
//     category_id      UUID REFERENCES categories(id),
//     tags             JSONB,
//     images           JSONB,
//     inventory        INTEGER NOT NULL DEFAULT 0,
//     is_active        BOOLEAN NOT NULL DEFAULT TRUE,
//     is_featured      BOOLEAN NOT NULL DEFAULT FALSE,
//     created_at       TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID             string                      `gorm:"primaryKey;column:id" json:"id"`
	Name           string                      `gorm:"column:name;type:text;not null" json:"name"`
	Slug           string                      `gorm:"column:slug;type:text;uniqueIndex" json:"slug"`
	Description    string                      `gorm:"column:description;type:text" json:"description"`
	Price          float64                     `gorm:"column:price;type:numeric" json:"price"`
	CompareAtPrice *float64                    `gorm:"column:compare_at_price;type:numeric" json:"compare_at_price,omitempty"`
	CategoryID     *string                     `gorm:"column:category_id" json:"category_id,omitempty"`
	Tags           datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	Images         datatypes.JSONSlice[string] `gorm:"column:images" json:"images"`
	Inventory      int                         `gorm:"column:inventory;default:0" json:"inventory"`
	IsActive       bool                        `gorm:"column:is_active;default:true" json:"is_active"`
	IsFeatured     bool                        `gorm:"column:is_featured;default:false" json:"is_featured"`
	CreatedAt      time.Time                   `gorm:"column:created_at" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductMetadata is the read-only projection of a product used for
// content-similarity computation. Fetched fresh per request so it always
// reflects the current catalog.
type ProductMetadata struct {
	ID         string
	CategoryID *string
	TagVector  []string
	Price      float64
}

// Metadata projects the similarity-relevant fields of a product.
func (p Product) Metadata() ProductMetadata {
	return ProductMetadata{
		ID:         p.ID,
		CategoryID: p.CategoryID,
		TagVector:  []string(p.Tags),
		Price:      p.Price,
	}
}
