package services

import (
	"context"
	"testing"

	"vastra_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func float64Ptr(v float64) *float64 { return &v }

type orderFixture struct {
	users    *fakeUserStore
	products *fakeProductStore
	orders   *fakeOrderStore
	gateway  *fakeGateway
	svc      *OrderService
	userID   primitive.ObjectID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		users:    newFakeUserStore(),
		products: newFakeProductStore(),
		orders:   newFakeOrderStore(),
		gateway:  &fakeGateway{},
	}
	f.svc = NewOrderService(f.users, f.products, f.orders, f.gateway)

	user := &models.User{Phone: "9876543210", Email: "client@example.com", Role: "user"}
	require.NoError(t, f.users.Create(context.Background(), user))
	f.userID = user.ID
	return f
}

func (f *orderFixture) itemInput(productID primitive.ObjectID, qty int) OrderItemInput {
	return OrderItemInput{
		Product:        productID.Hex(),
		ProductVariant: primitive.NewObjectID().Hex(),
		Size:           "L",
		Quantity:       qty,
	}
}

func validAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FullName:   "Asha Verma",
		Phone:      "9876543210",
		Address:    "12 MG Road",
		City:       "Pune",
		State:      "Maharashtra",
		PostalCode: "411001",
	}
}

func TestCreateOrderComputesTotalFromSnapshots(t *testing.T) {
	f := newOrderFixture(t)

	p1 := f.products.add(&models.Product{Title: "Kurta", Amount: 500})
	p2 := f.products.add(&models.Product{Title: "Saree", Amount: 1200, DiscountedAmount: float64Ptr(999)})

	order, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		User:            f.userID.Hex(),
		Products:        []OrderItemInput{f.itemInput(p1, 2), f.itemInput(p2, 3)},
		ShippingAddress: validAddress(),
	})
	require.NoError(t, err)

	// 500×2 + 999×3 : le prix remisé prime sur le prix de base
	assert.Equal(t, 500.0*2+999.0*3, order.TotalAmount)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, "Kurta", order.Products[0].Title)

	// Le total ne bouge pas si le catalogue change après coup
	f.products.products[p1].Amount = 9000
	persisted, err := f.orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalAmount, persisted.TotalAmount)
}

func TestCreateOrderMissingProductAbortsWithoutPersisting(t *testing.T) {
	f := newOrderFixture(t)

	p1 := f.products.add(&models.Product{Title: "Kurta", Amount: 500})
	missing := primitive.NewObjectID()

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		User:            f.userID.Hex(),
		Products:        []OrderItemInput{f.itemInput(p1, 1), f.itemInput(missing, 1)},
		ShippingAddress: validAddress(),
	})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing.Hex(), notFound.ID)

	// Aucune commande partielle, aucun appel transporteur
	orders, _ := f.orders.List(context.Background())
	assert.Empty(t, orders)
	assert.Zero(t, f.gateway.createCalls)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.products.add(&models.Product{Title: "Kurta", Amount: 500})

	cases := []struct {
		name  string
		input CreateOrderInput
	}{
		{"utilisateur manquant", CreateOrderInput{
			Products:        []OrderItemInput{f.itemInput(p1, 1)},
			ShippingAddress: validAddress(),
		}},
		{"produits vides", CreateOrderInput{
			User:            f.userID.Hex(),
			ShippingAddress: validAddress(),
		}},
		{"adresse manquante", CreateOrderInput{
			User:     f.userID.Hex(),
			Products: []OrderItemInput{f.itemInput(p1, 1)},
		}},
		{"quantité nulle", CreateOrderInput{
			User:            f.userID.Hex(),
			Products:        []OrderItemInput{f.itemInput(p1, 0)},
			ShippingAddress: validAddress(),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateOrder(context.Background(), tc.input)
			var validation *ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestCreateOrderSurvivesGatewayFailure(t *testing.T) {
	f := newOrderFixture(t)
	f.gateway.fail = true

	p1 := f.products.add(&models.Product{Title: "Kurta", Amount: 500})

	order, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		User:            f.userID.Hex(),
		Products:        []OrderItemInput{f.itemInput(p1, 2)},
		ShippingAddress: validAddress(),
	})

	// La panne du transporteur ne fait jamais échouer la création
	require.NoError(t, err)
	assert.Equal(t, 1000.0, order.TotalAmount)
	assert.Nil(t, order.ShiprocketOrderID)
	assert.Nil(t, order.ShiprocketOrderDate)
	assert.Equal(t, 1, f.gateway.createCalls)

	persisted, err := f.orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Nil(t, persisted.ShiprocketOrderID)
}

func TestCreateOrderBackfillsShiprocketFields(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.products.add(&models.Product{Title: "Kurta", Amount: 500})

	order, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		User:            f.userID.Hex(),
		Products:        []OrderItemInput{f.itemInput(p1, 1)},
		ShippingAddress: validAddress(),
		PaymentMethod:   models.PaymentMethodRazorpay,
		PaymentStatus:   models.PaymentStatusPaid,
	})
	require.NoError(t, err)

	require.NotNil(t, order.ShiprocketOrderID)
	assert.Equal(t, int64(4242), *order.ShiprocketOrderID)
	require.NotNil(t, order.ShiprocketOrderDate)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
}

func TestMarkDeliveredThenCancelIsRejected(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.products.add(&models.Product{Title: "Kurta", Amount: 500})

	order, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		User:            f.userID.Hex(),
		Products:        []OrderItemInput{f.itemInput(p1, 2)},
		ShippingAddress: validAddress(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, order.TotalAmount)

	delivered, err := f.svc.MarkDelivered(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	require.NotNil(t, delivered.DeliveredAt)

	// Annulation après livraison : refusée
	_, err = f.svc.Cancel(context.Background(), order.ID)
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestCancelSetsFlagAndTimestamp(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.products.add(&models.Product{Title: "Kurta", Amount: 500})

	order, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		User:            f.userID.Hex(),
		Products:        []OrderItemInput{f.itemInput(p1, 1)},
		ShippingAddress: validAddress(),
	})
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, cancelled.IsCancelled)
	require.NotNil(t, cancelled.CancelledAt)
}

func TestStateTransitionsOnMissingOrder(t *testing.T) {
	f := newOrderFixture(t)
	missing := primitive.NewObjectID()

	var notFound *NotFoundError

	_, err := f.svc.MarkDelivered(context.Background(), missing)
	assert.ErrorAs(t, err, &notFound)

	_, err = f.svc.Cancel(context.Background(), missing)
	assert.ErrorAs(t, err, &notFound)

	_, err = f.svc.GetOrder(context.Background(), missing)
	assert.ErrorAs(t, err, &notFound)

	err = f.svc.DeleteOrder(context.Background(), missing)
	assert.ErrorAs(t, err, &notFound)
}

func TestShipmentQueriesSurfaceGatewayEnvelope(t *testing.T) {
	f := newOrderFixture(t)

	res := f.svc.TrackShipment(context.Background(), "9191")
	assert.True(t, res.Success)

	f.gateway.fail = true
	res = f.svc.TrackShipment(context.Background(), "9191")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
	assert.NotNil(t, res.Err)

	res = f.svc.ListShipments(context.Background(), 1, 10)
	assert.False(t, res.Success)
}
