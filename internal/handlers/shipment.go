package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"vastra_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

type ShipmentHandler struct {
	Orders *services.OrderService
}

func NewShipmentHandler(orders *services.OrderService) *ShipmentHandler {
	return &ShipmentHandler{Orders: orders}
}

// Track — suivi d'une expédition par son identifiant Shiprocket. L'enveloppe
// succès/échec du transporteur est retournée telle quelle, jamais masquée.
func (h *ShipmentHandler) Track(c *gin.Context) {
	shipmentID := c.Param("shipmentId")
	if shipmentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant d'expédition requis"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	res := h.Orders.TrackShipment(ctx, shipmentID)
	if !res.Success {
		c.JSON(http.StatusBadGateway, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// List — liste paginée des expéditions Shiprocket.
func (h *ShipmentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	res := h.Orders.ListShipments(ctx, page, limit)
	if !res.Success {
		c.JSON(http.StatusBadGateway, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Serviceability — vérifie qu'un pincode est desservi. La desserte se décide
// sur la présence d'options transporteur, pas sur un booléen du provider.
func (h *ShipmentHandler) Serviceability(c *gin.Context) {
	pincode := c.Param("pincode")
	if pincode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pincode requis"})
		return
	}

	var opts services.ServiceabilityOptions
	if w, err := strconv.ParseFloat(c.Query("weight"), 64); err == nil {
		opts.Weight = w
	}
	if cod, err := strconv.Atoi(c.Query("cod")); err == nil {
		opts.COD = &cod
	}
	if v, err := strconv.Atoi(c.Query("length")); err == nil {
		opts.Length = v
	}
	if v, err := strconv.Atoi(c.Query("breadth")); err == nil {
		opts.Breadth = v
	}
	if v, err := strconv.Atoi(c.Query("height")); err == nil {
		opts.Height = v
	}
	if v, err := strconv.ParseFloat(c.Query("declared_value"), 64); err == nil {
		opts.DeclaredValue = v
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	res := h.Orders.CheckServiceability(ctx, pincode, opts)
	if !res.Success {
		c.JSON(http.StatusBadGateway, res)
		return
	}

	data, _ := res.Data.(services.ServiceabilityData)
	couriers := data.Data.AvailableCourierCompanies
	c.JSON(http.StatusOK, gin.H{
		"serviceable": len(couriers) > 0,
		"couriers":    couriers,
	})
}
