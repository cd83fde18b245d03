package handlers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"vastra_back_end/internal/models"
	"vastra_back_end/internal/services"
	"vastra_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentHandler struct {
	Razorpay *razorpay.Client
	Secret   string // secret partagé Razorpay, sert aussi à vérifier les callbacks
	Orders   services.OrderStore
}

func NewPaymentHandler(orders services.OrderStore) *PaymentHandler {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	secret := os.Getenv("RAZORPAY_KEY_SECRET")
	return &PaymentHandler{
		Razorpay: razorpay.NewClient(keyID, secret),
		Secret:   secret,
		Orders:   orders,
	}
}

// CreateRazorpayOrder crée un ordre de paiement côté passerelle.
// Le montant est en paise.
func (h *PaymentHandler) CreateRazorpayOrder(c *gin.Context) {
	var input struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Montant invalide"})
		return
	}

	currency := input.Currency
	if currency == "" {
		currency = "INR"
	}

	data := map[string]interface{}{
		"amount":   input.Amount,
		"currency": currency,
		"receipt":  "receipt_" + uuid.NewString(),
	}

	order, err := h.Razorpay.Order.Create(data, nil)
	if err != nil {
		log.Printf("❌ Création ordre Razorpay échouée: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de la création de l'ordre Razorpay"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ordre Razorpay créé", "order": order})
}

// VerifyRazorpayPayment authentifie le callback de paiement par signature
// HMAC-SHA256. Si la commande interne est fournie, son statut de paiement est
// mis à jour dans la foulée.
func (h *PaymentHandler) VerifyRazorpayPayment(c *gin.Context) {
	var input struct {
		RazorpayOrderID   string `json:"razorpay_order_id"`
		RazorpayPaymentID string `json:"razorpay_payment_id"`
		RazorpaySignature string `json:"razorpay_signature"`
		OrderID           string `json:"orderId"` // commande interne, optionnelle
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	valid := utils.VerifyPaymentSignature(
		input.RazorpayOrderID, input.RazorpayPaymentID, input.RazorpaySignature, h.Secret)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"verified": false, "error": "Signature de paiement invalide"})
		return
	}

	if input.OrderID != "" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		if id, err := primitive.ObjectIDFromHex(input.OrderID); err == nil {
			_, err := h.Orders.Update(ctx, id, bson.M{
				"paymentStatus":     models.PaymentStatusPaid,
				"razorpayOrderId":   input.RazorpayOrderID,
				"razorpayPaymentId": input.RazorpayPaymentID,
			})
			if err != nil {
				log.Printf("⚠️ Paiement vérifié mais backfill commande %s impossible: %v", input.OrderID, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"verified": true, "message": "Paiement vérifié avec succès"})
}

// CreateStripeIntent crée un PaymentIntent Stripe pour le paiement par carte.
func (h *PaymentHandler) CreateStripeIntent(c *gin.Context) {
	var input struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Montant invalide"})
		return
	}

	currency := input.Currency
	if currency == "" {
		currency = string(stripe.CurrencyINR)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(input.Amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		log.Printf("❌ Création PaymentIntent Stripe échouée: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de la création du paiement Stripe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": pi.ClientSecret})
}
