package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"vastra_back_end/internal/models"
)

// Result — enveloppe succès/échec des appels Shiprocket. Erreurs transport,
// erreurs d'authentification et refus métier du transporteur arrivent tous
// dans la même variante échec, payload brut conservé dans Err pour le
// diagnostic. Aucune méthode du client ne laisse remonter une erreur nue.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Err     any    `json:"error,omitempty"`
	Message string `json:"message"`
}

func failure(err any, message string) Result {
	return Result{Success: false, Err: err, Message: message}
}

// ShipmentData — champs de corrélation retournés par la création d'expédition.
type ShipmentData struct {
	OrderID    int64  `json:"order_id"`
	ShipmentID int64  `json:"shipment_id"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
}

// CourierOption — une option de livraison proposée pour un pincode.
type CourierOption struct {
	CourierName           string  `json:"courier_name"`
	Rate                  float64 `json:"rate"`
	EstimatedDeliveryDays string  `json:"estimated_delivery_days"`
	Etd                   string  `json:"etd"`
}

// ServiceabilityData — réponse du check de desserte. C'est à l'appelant de
// regarder si des transporteurs sont proposés, pas de faire confiance à un
// booléen unique du provider.
type ServiceabilityData struct {
	Data struct {
		AvailableCourierCompanies []CourierOption `json:"available_courier_companies"`
	} `json:"data"`
}

// ServiceabilityOptions — paramètres optionnels du check de desserte.
// Les zéros sont remplacés par les défauts colis standard.
type ServiceabilityOptions struct {
	COD           *int
	Weight        float64
	Length        int
	Breadth       int
	Height        int
	DeclaredValue float64
}

// ShiprocketConfig — configuration injectée au démarrage (pas de singleton caché).
type ShiprocketConfig struct {
	BaseURL       string
	Email         string
	Password      string
	PickupPincode string
	// Durée de validité annoncée du token et marge de sécurité avant
	// renouvellement. Le token est rafraîchi dès que now >= expiry - marge.
	TokenValidity time.Duration
	RefreshMargin time.Duration
	HTTPTimeout   time.Duration
}

func ShiprocketConfigFromEnv() ShiprocketConfig {
	cfg := ShiprocketConfig{
		BaseURL:       os.Getenv("SHIPROCKET_API_URL"),
		Email:         os.Getenv("SHIPROCKET_EMAIL"),
		Password:      os.Getenv("SHIPROCKET_PASSWORD"),
		PickupPincode: os.Getenv("SHIPROCKET_PICKUP_PINCODE"),
		TokenValidity: 15 * 24 * time.Hour,
		RefreshMargin: 24 * time.Hour,
		HTTPTimeout:   30 * time.Second,
	}
	if h, err := strconv.Atoi(os.Getenv("SHIPROCKET_TOKEN_VALIDITY_HOURS")); err == nil && h > 0 {
		cfg.TokenValidity = time.Duration(h) * time.Hour
	}
	if h, err := strconv.Atoi(os.Getenv("SHIPROCKET_REFRESH_MARGIN_HOURS")); err == nil && h > 0 {
		cfg.RefreshMargin = time.Duration(h) * time.Hour
	}
	return cfg
}

// ShiprocketClient — client authentifié du transporteur. Le token bearer est un
// état partagé entre toutes les requêtes ; le rafraîchissement est sérialisé
// sous mutex pour éviter les authentifications redondantes concurrentes.
type ShiprocketClient struct {
	cfg        ShiprocketConfig
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewShiprocketClient(cfg ShiprocketConfig) *ShiprocketClient {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShiprocketClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ensureAuth garantit un token valide, en le renouvelant s'il est absent ou
// proche de l'expiration. Les tokens Shiprocket vivent ~15 jours ; on retient
// une échéance locale à validité - marge pour renouveler avant la vraie fin.
func (c *ShiprocketClient) ensureAuth(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"email":    c.cfg.Email,
		"password": c.cfg.Password,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/external/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("authentification Shiprocket: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("❌ Authentification Shiprocket refusée (%d): %s", resp.StatusCode, raw)
		return fmt.Errorf("authentification Shiprocket refusée (%d)", resp.StatusCode)
	}

	var auth struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &auth); err != nil || auth.Token == "" {
		return fmt.Errorf("token Shiprocket absent de la réponse")
	}

	c.token = auth.Token
	c.tokenExpiry = time.Now().Add(c.cfg.TokenValidity - c.cfg.RefreshMargin)
	log.Println("✅ Token Shiprocket renouvelé")
	return nil
}

// doRequest exécute un appel authentifié et retourne le corps brut.
// Tout statut hors 2xx devient une erreur portant le payload du provider.
func (c *ShiprocketClient) doRequest(ctx context.Context, method, path string, query url.Values, payload any) (json.RawMessage, error) {
	if err := c.ensureAuth(ctx); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.Lock()
	req.Header.Set("Authorization", "Bearer "+c.token)
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &providerError{status: resp.StatusCode, payload: raw}
	}
	return raw, nil
}

// providerError conserve le payload brut du transporteur pour le diagnostic.
type providerError struct {
	status  int
	payload json.RawMessage
}

func (e *providerError) Error() string {
	return fmt.Sprintf("shiprocket a répondu %d: %s", e.status, e.payload)
}

// errPayload extrait de quoi remplir Result.Err : payload brut du provider si
// disponible, sinon le message de l'erreur.
func errPayload(err error) any {
	if pe, ok := err.(*providerError); ok {
		var decoded any
		if json.Unmarshal(pe.payload, &decoded) == nil {
			return decoded
		}
		return string(pe.payload)
	}
	return err.Error()
}

// CreateShipment enregistre la commande auprès de Shiprocket. Le mapping suit
// le contrat adhoc : adresse de facturation = adresse de livraison, dimensions
// colis par défaut (le système ne calcule pas de métriques réelles).
func (c *ShiprocketClient) CreateShipment(ctx context.Context, order *models.Order, user *models.User) Result {
	items := make([]map[string]any, 0, len(order.Products))
	for _, item := range order.Products {
		sku := item.SKU
		if sku == "" {
			sku = "SKU-" + item.Product.Hex()
		}
		items = append(items, map[string]any{
			"name":          item.Title,
			"sku":           sku,
			"units":         item.Quantity,
			"selling_price": item.UnitPrice(),
			"product_id":    item.Product.Hex(),
		})
	}

	paymentMethod := "Prepaid"
	if order.PaymentMethod == models.PaymentMethodCOD {
		paymentMethod = "COD"
	}

	email := ""
	if user != nil {
		email = user.Email
	}

	shipment := map[string]any{
		"order_id":              order.ID.Hex(),
		"order_date":            time.Now().Format("2006-01-02"),
		"pickup_location":       "Default",
		"channel_id":            "",
		"comment":               "Order placed via ecommerce platform",
		"billing_customer_name": order.ShippingAddress.FullName,
		"billing_last_name":     "",
		"billing_address":       order.ShippingAddress.Address,
		"billing_address_2":     "",
		"billing_city":          order.ShippingAddress.City,
		"billing_pincode":       order.ShippingAddress.PostalCode,
		"billing_state":         order.ShippingAddress.State,
		"billing_country":       "India",
		"billing_email":         email,
		"billing_phone":         order.ShippingAddress.Phone,
		"shipping_is_billing":   true,
		"order_items":           items,
		"payment_method":        paymentMethod,
		"sub_total":             order.TotalAmount,
		"length":                10,
		"breadth":               10,
		"height":                10,
		"weight":                0.5,
	}

	raw, err := c.doRequest(ctx, http.MethodPost, "/v1/external/orders/create/adhoc", nil, shipment)
	if err != nil {
		log.Printf("❌ Échec création expédition Shiprocket: %v", err)
		return failure(errPayload(err), "Échec de la création de l'expédition Shiprocket")
	}

	var data ShipmentData
	if err := json.Unmarshal(raw, &data); err != nil {
		return failure(err.Error(), "Réponse Shiprocket illisible")
	}

	return Result{Success: true, Data: data, Message: "Expédition créée avec succès"}
}

// TrackShipment récupère le suivi d'une expédition par son id externe.
func (c *ShiprocketClient) TrackShipment(ctx context.Context, shipmentID string) Result {
	query := url.Values{"shipment_id": {shipmentID}}
	raw, err := c.doRequest(ctx, http.MethodGet, "/v1/external/courier/track", query, nil)
	if err != nil {
		log.Printf("❌ Échec suivi expédition %s: %v", shipmentID, err)
		return failure(errPayload(err), "Échec de la récupération du suivi")
	}

	var data any
	_ = json.Unmarshal(raw, &data)
	return Result{Success: true, Data: data, Message: "Suivi récupéré avec succès"}
}

// GetShipments liste les expéditions (paginé).
func (c *ShiprocketClient) GetShipments(ctx context.Context, page, limit int) Result {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	query := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	raw, err := c.doRequest(ctx, http.MethodGet, "/v1/external/orders", query, nil)
	if err != nil {
		log.Printf("❌ Échec listing expéditions: %v", err)
		return failure(errPayload(err), "Échec de la récupération des expéditions")
	}

	var data any
	_ = json.Unmarshal(raw, &data)
	return Result{Success: true, Data: data, Message: "Expéditions récupérées avec succès"}
}

// CheckServiceability vérifie qu'un pincode de destination est desservi depuis
// le pincode d'enlèvement configuré. Échoue immédiatement — avant tout appel
// réseau — si le pincode d'enlèvement n'est pas configuré.
func (c *ShiprocketClient) CheckServiceability(ctx context.Context, deliveryPincode string, opts ServiceabilityOptions) Result {
	if c.cfg.PickupPincode == "" {
		log.Println("❌ SHIPROCKET_PICKUP_PINCODE non configuré")
		return failure("pincode d'enlèvement non configuré (SHIPROCKET_PICKUP_PINCODE)",
			"Impossible de vérifier la desserte : pincode d'enlèvement manquant")
	}

	cod := 1
	if opts.COD != nil {
		cod = *opts.COD
	}
	weight := opts.Weight
	if weight == 0 {
		weight = 0.5
	}
	length, breadth, height := opts.Length, opts.Breadth, opts.Height
	if length == 0 {
		length = 15
	}
	if breadth == 0 {
		breadth = 10
	}
	if height == 0 {
		height = 5
	}
	declared := opts.DeclaredValue
	if declared == 0 {
		declared = 50
	}

	query := url.Values{
		"pickup_postcode":   {c.cfg.PickupPincode},
		"delivery_postcode": {deliveryPincode},
		"cod":               {strconv.Itoa(cod)},
		"weight":            {strconv.FormatFloat(weight, 'f', -1, 64)},
		"length":            {strconv.Itoa(length)},
		"breadth":           {strconv.Itoa(breadth)},
		"height":            {strconv.Itoa(height)},
		"declared_value":    {strconv.FormatFloat(declared, 'f', -1, 64)},
	}

	raw, err := c.doRequest(ctx, http.MethodGet, "/v1/external/courier/serviceability", query, nil)
	if err != nil {
		log.Printf("❌ Échec vérification desserte %s: %v", deliveryPincode, err)
		return failure(errPayload(err), "Échec de la vérification de desserte Shiprocket")
	}

	var data ServiceabilityData
	if err := json.Unmarshal(raw, &data); err != nil {
		return failure(err.Error(), "Réponse Shiprocket illisible")
	}

	return Result{Success: true, Data: data, Message: "Desserte vérifiée avec succès"}
}
