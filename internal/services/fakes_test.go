package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vastra_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fakes en mémoire des interfaces de persistance et du transporteur.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *fakeUserStore) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Phone == phone {
			copy := *u
			return &copy, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, nil
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	copy := *user
	s.users[user.ID] = &copy
	return nil
}

func (s *fakeUserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *fakeUserStore) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	if v, ok := fields["fullName"].(string); ok {
		u.FullName = v
	}
	if v, ok := fields["email"].(string); ok {
		u.Email = v
	}
	if v, ok := fields["address"].(string); ok {
		u.Address = v
	}
	if v, ok := fields["avatar"].(string); ok {
		u.Avatar = v
	}
	copy := *u
	return &copy, nil
}

type fakeProductStore struct {
	products map[primitive.ObjectID]*models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: make(map[primitive.ObjectID]*models.Product)}
}

func (s *fakeProductStore) add(p *models.Product) primitive.ObjectID {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.products[p.ID] = p
	return p.ID
}

func (s *fakeProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (s *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	copy := *order
	s.orders[order.ID] = &copy
	return nil
}

func (s *fakeOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		copy := *o
		return &copy, nil
	}
	return nil, nil
}

func (s *fakeOrderStore) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if o.User == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) List(_ context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *fakeOrderStore) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	if v, ok := fields["isDelivered"].(bool); ok {
		o.IsDelivered = v
	}
	if v, ok := fields["deliveredAt"].(time.Time); ok {
		o.DeliveredAt = &v
	}
	if v, ok := fields["isCancelled"].(bool); ok {
		o.IsCancelled = v
	}
	if v, ok := fields["cancelledAt"].(time.Time); ok {
		o.CancelledAt = &v
	}
	if v, ok := fields["shiprocketOrderId"].(int64); ok {
		o.ShiprocketOrderID = &v
	}
	if v, ok := fields["shiprocketOrderDate"].(string); ok {
		o.ShiprocketOrderDate = &v
	}
	if v, ok := fields["paymentStatus"].(string); ok {
		o.PaymentStatus = v
	}
	copy := *o
	return &copy, nil
}

func (s *fakeOrderStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, id)
	return nil
}

// fakeGateway simule le transporteur : succès par défaut, échec forcé via fail.
type fakeGateway struct {
	fail        bool
	createCalls int
}

func (g *fakeGateway) CreateShipment(_ context.Context, _ *models.Order, _ *models.User) Result {
	g.createCalls++
	if g.fail {
		return failure("network error", "Échec de la création de l'expédition Shiprocket")
	}
	return Result{
		Success: true,
		Data:    ShipmentData{OrderID: 4242, ShipmentID: 9191, Status: "NEW"},
		Message: "Expédition créée avec succès",
	}
}

func (g *fakeGateway) TrackShipment(_ context.Context, shipmentID string) Result {
	if g.fail {
		return failure("network error", "Échec de la récupération du suivi")
	}
	return Result{Success: true, Data: map[string]any{"shipment_id": shipmentID}, Message: "Suivi récupéré avec succès"}
}

func (g *fakeGateway) GetShipments(_ context.Context, page, limit int) Result {
	if g.fail {
		return failure("network error", "Échec de la récupération des expéditions")
	}
	return Result{Success: true, Data: map[string]any{"page": page, "limit": limit}, Message: "Expéditions récupérées avec succès"}
}

func (g *fakeGateway) CheckServiceability(_ context.Context, pincode string, _ ServiceabilityOptions) Result {
	if g.fail {
		return failure("network error", "Échec de la vérification de desserte Shiprocket")
	}
	var data ServiceabilityData
	data.Data.AvailableCourierCompanies = []CourierOption{{CourierName: "Delhivery", Rate: 45}}
	return Result{Success: true, Data: data, Message: "Desserte vérifiée avec succès"}
}

// fakeSMS enregistre le dernier code envoyé ; échec forcé via fail.
type fakeSMS struct {
	fail     bool
	sent     int
	lastCode string
	lastTo   string
}

func (d *fakeSMS) DispatchCode(_ context.Context, phone, code string) error {
	if d.fail {
		return fmt.Errorf("passerelle SMS indisponible")
	}
	d.sent++
	d.lastCode = code
	d.lastTo = phone
	return nil
}
