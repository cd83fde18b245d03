package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Méthodes de paiement acceptées
const (
	PaymentMethodCOD      = "cod"
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodStripe   = "stripe"
	PaymentMethodPaypal   = "paypal"
)

// Statuts de paiement
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// OrderItem — ligne de commande avec snapshot du prix au moment de la création.
// Le prix snapshot (Amount / DiscountedAmount) ne bouge plus jamais, même si le
// catalogue change ensuite.
type OrderItem struct {
	Product          primitive.ObjectID `bson:"product" json:"product"`
	ProductVariant   primitive.ObjectID `bson:"productVariant" json:"productVariant"`
	Size             string             `bson:"size" json:"size"`
	Quantity         int                `bson:"quantity" json:"quantity"`
	Title            string             `bson:"title" json:"title"`
	Amount           float64            `bson:"amount" json:"amount"`
	DiscountedAmount *float64           `bson:"discountedAmount,omitempty" json:"discountedAmount,omitempty"`
	SKU              string             `bson:"sku,omitempty" json:"sku,omitempty"`
	Image            string             `bson:"image,omitempty" json:"image,omitempty"`
}

// UnitPrice retourne le prix unitaire effectif snapshotté (remisé si présent).
func (it *OrderItem) UnitPrice() float64 {
	if it.DiscountedAmount != nil {
		return *it.DiscountedAmount
	}
	return it.Amount
}

type ShippingAddress struct {
	FullName       string `bson:"fullName" json:"fullName"`
	Phone          string `bson:"phone" json:"phone"`
	Address        string `bson:"address" json:"address"`
	City           string `bson:"city" json:"city"`
	State          string `bson:"state" json:"state"`
	PostalCode     string `bson:"postalCode" json:"postalCode"`
	Landmark       string `bson:"landmark,omitempty" json:"landmark,omitempty"`
	AlternatePhone string `bson:"alternatePhone,omitempty" json:"alternatePhone,omitempty"`
	Email          string `bson:"email,omitempty" json:"email,omitempty"`
}

// Order — entité centrale. Les champs Shiprocket restent nil tant que le
// rattachement au transporteur n'a pas abouti ; ce n'est PAS un état d'erreur
// pour la commande elle-même.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	Products        []OrderItem        `bson:"products" json:"products"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus   string             `bson:"paymentStatus" json:"paymentStatus"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	DonationAmount  float64            `bson:"donationAmount,omitempty" json:"donationAmount,omitempty"`

	IsDelivered bool       `bson:"isDelivered" json:"isDelivered"`
	DeliveredAt *time.Time `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	IsCancelled bool       `bson:"isCancelled" json:"isCancelled"`
	CancelledAt *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`

	// Corrélation Shiprocket (backfill après création si le rattachement réussit)
	ShiprocketOrderID   *int64  `bson:"shiprocketOrderId,omitempty" json:"shiprocketOrderId,omitempty"`
	ShiprocketOrderDate *string `bson:"shiprocketOrderDate,omitempty" json:"shiprocketOrderDate,omitempty"`

	// Corrélation passerelle de paiement
	RazorpayOrderID   string `bson:"razorpayOrderId,omitempty" json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string `bson:"razorpayPaymentId,omitempty" json:"razorpayPaymentId,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
