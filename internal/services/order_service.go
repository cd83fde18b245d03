package services

import (
	"context"
	"log"
	"time"

	"vastra_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShipmentGateway — opérations exposées par le client transporteur, sous forme
// d'enveloppe Result. Permet d'injecter un faux transporteur dans les tests.
type ShipmentGateway interface {
	CreateShipment(ctx context.Context, order *models.Order, user *models.User) Result
	TrackShipment(ctx context.Context, shipmentID string) Result
	GetShipments(ctx context.Context, page, limit int) Result
	CheckServiceability(ctx context.Context, deliveryPincode string, opts ServiceabilityOptions) Result
}

// OrderService — orchestrateur de commandes : validation, pricing depuis le
// catalogue, persistance, puis rattachement best-effort au transporteur.
type OrderService struct {
	users    UserStore
	products ProductStore
	orders   OrderStore
	gateway  ShipmentGateway
}

func NewOrderService(users UserStore, products ProductStore, orders OrderStore, gateway ShipmentGateway) *OrderService {
	return &OrderService{users: users, products: products, orders: orders, gateway: gateway}
}

type OrderItemInput struct {
	Product        string `json:"product"`
	ProductVariant string `json:"productVariant"`
	Size           string `json:"size"`
	Quantity       int    `json:"quantity"`
}

type CreateOrderInput struct {
	User              string                 `json:"user"`
	Products          []OrderItemInput       `json:"products"`
	ShippingAddress   models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod     string                 `json:"paymentMethod"`
	PaymentStatus     string                 `json:"paymentStatus"`
	DonationAmount    float64                `json:"donationAmount"`
	RazorpayOrderID   string                 `json:"razorpayOrderId"`
	RazorpayPaymentID string                 `json:"razorpayPaymentId"`
}

// CreateOrder crée une commande : validation stricte et pricing AVANT toute
// persistance, puis rattachement Shiprocket APRÈS — et tolérant. Une panne du
// transporteur ne fait jamais échouer la création : la commande est durable
// avant le premier appel externe, les champs de corrélation restent nil.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.User == "" || len(input.Products) == 0 ||
		input.ShippingAddress.FullName == "" || input.ShippingAddress.Address == "" {
		return nil, &ValidationError{Msg: "user, products et shippingAddress sont requis"}
	}

	userID, err := primitive.ObjectIDFromHex(input.User)
	if err != nil {
		return nil, &ValidationError{Msg: "identifiant utilisateur invalide"}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "utilisateur", ID: input.User}
	}

	// Pricing : résolution de chaque produit, snapshot du prix courant
	// (remisé de préférence). Abandon complet si un produit manque.
	items := make([]models.OrderItem, 0, len(input.Products))
	var total float64
	for _, in := range input.Products {
		if in.Quantity < 1 {
			return nil, &ValidationError{Msg: "quantité invalide (minimum 1)"}
		}
		productID, err := primitive.ObjectIDFromHex(in.Product)
		if err != nil {
			return nil, &ValidationError{Msg: "identifiant produit invalide: " + in.Product}
		}
		variantID, err := primitive.ObjectIDFromHex(in.ProductVariant)
		if err != nil {
			return nil, &ValidationError{Msg: "identifiant variante invalide: " + in.ProductVariant}
		}

		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, &NotFoundError{Resource: "produit", ID: in.Product}
		}

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}

		item := models.OrderItem{
			Product:          product.ID,
			ProductVariant:   variantID,
			Size:             in.Size,
			Quantity:         in.Quantity,
			Title:            product.Title,
			Amount:           product.Amount,
			DiscountedAmount: product.DiscountedAmount,
			Image:            image,
		}
		items = append(items, item)
		total += product.EffectivePrice() * float64(in.Quantity)
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCOD
	}
	paymentStatus := input.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentStatusPending
	}

	now := time.Now()
	order := &models.Order{
		User:              userID,
		Products:          items,
		ShippingAddress:   input.ShippingAddress,
		PaymentMethod:     paymentMethod,
		PaymentStatus:     paymentStatus,
		TotalAmount:       total,
		DonationAmount:    input.DonationAmount,
		RazorpayOrderID:   input.RazorpayOrderID,
		RazorpayPaymentID: input.RazorpayPaymentID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	// Rattachement transporteur, best-effort. La commande est déjà durable.
	res := s.gateway.CreateShipment(ctx, order, user)
	if res.Success {
		if data, ok := res.Data.(ShipmentData); ok {
			orderDate := now.Format("2006-01-02")
			updated, err := s.orders.Update(ctx, order.ID, bson.M{
				"shiprocketOrderId":   data.OrderID,
				"shiprocketOrderDate": orderDate,
			})
			if err != nil {
				log.Printf("⚠️ Backfill Shiprocket impossible pour %s: %v", order.ID.Hex(), err)
			} else if updated != nil {
				order = updated
			}
			log.Printf("📦 Commande %s rattachée à Shiprocket (order_id=%d)", order.ID.Hex(), data.OrderID)
		}
	} else {
		// Jamais bloquant : le client a sa commande, Shiprocket se rattrapera
		log.Printf("⚠️ Rattachement Shiprocket échoué pour %s: %s", order.ID.Hex(), res.Message)
	}

	return order, nil
}

// MarkDelivered marque la commande livrée avec horodatage.
func (s *OrderService) MarkDelivered(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &NotFoundError{Resource: "commande", ID: id.Hex()}
	}

	return s.orders.Update(ctx, id, bson.M{
		"isDelivered": true,
		"deliveredAt": time.Now(),
	})
}

// Cancel annule la commande. Une commande déjà livrée ne s'annule plus —
// à ce stade c'est un retour, pas une annulation.
func (s *OrderService) Cancel(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &NotFoundError{Resource: "commande", ID: id.Hex()}
	}
	if order.IsDelivered {
		return nil, &ConflictError{Msg: "commande déjà livrée, annulation impossible"}
	}

	return s.orders.Update(ctx, id, bson.M{
		"isCancelled": true,
		"cancelledAt": time.Now(),
	})
}

func (s *OrderService) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &NotFoundError{Resource: "commande", ID: id.Hex()}
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.List(ctx)
}

func (s *OrderService) ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

func (s *OrderService) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		return &NotFoundError{Resource: "commande", ID: id.Hex()}
	}
	return s.orders.Delete(ctx, id)
}

// TrackShipment / ListShipments / CheckServiceability : pass-through vers le
// transporteur, enveloppe Result retournée telle quelle.
func (s *OrderService) TrackShipment(ctx context.Context, shipmentID string) Result {
	return s.gateway.TrackShipment(ctx, shipmentID)
}

func (s *OrderService) ListShipments(ctx context.Context, page, limit int) Result {
	return s.gateway.GetShipments(ctx, page, limit)
}

func (s *OrderService) CheckServiceability(ctx context.Context, pincode string, opts ServiceabilityOptions) Result {
	return s.gateway.CheckServiceability(ctx, pincode, opts)
}
