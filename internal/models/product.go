package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string             `bson:"title" json:"title"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	Images           []string           `bson:"images,omitempty" json:"images,omitempty"`
	Amount           float64            `bson:"amount" json:"amount"`
	DiscountedAmount *float64           `bson:"discountedAmount,omitempty" json:"discountedAmount,omitempty"`
	Category         primitive.ObjectID `bson:"category,omitempty" json:"category,omitempty"`
	InStock          bool               `bson:"inStock" json:"inStock"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EffectivePrice retourne le prix remisé s'il existe, sinon le prix de base.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountedAmount != nil {
		return *p.DiscountedAmount
	}
	return p.Amount
}

type ProductVariant struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	ColorCode string             `bson:"colorCode" json:"colorCode"`
	SKU       string             `bson:"sku,omitempty" json:"sku,omitempty"`
	Images    []string           `bson:"images,omitempty" json:"images,omitempty"`
}
