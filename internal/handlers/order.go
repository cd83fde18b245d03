package handlers

import (
	"context"
	"net/http"
	"time"

	"vastra_back_end/internal/services"
	"vastra_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderHandler struct {
	Orders *services.OrderService
	Users  services.UserStore
}

func NewOrderHandler(orders *services.OrderService, users services.UserStore) *OrderHandler {
	return &OrderHandler{Orders: orders, Users: users}
}

// Create crée une commande. Répond toujours 201 si validation et pricing
// passent, que le rattachement Shiprocket ait réussi ou non.
func (h *OrderHandler) Create(c *gin.Context) {
	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	// 30s : la création inclut l'aller-retour transporteur
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	order, err := h.Orders.CreateOrder(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}

	// Email de confirmation, best-effort, hors du chemin de réponse
	if user, err := h.Users.FindByID(ctx, order.User); err == nil && user != nil && user.Email != "" {
		go func(email string) {
			_ = utils.SendOrderConfirmationEmail(order, email)
		}(user.Email)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Commande créée", "order": order})
}

func (h *OrderHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.Orders.ListOrders(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de commande invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.Orders.GetOrder(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) ListByUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant utilisateur invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.Orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// MarkDelivered marque la commande livrée et notifie le client par email.
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de commande invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.Orders.MarkDelivered(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if user, err := h.Users.FindByID(ctx, order.User); err == nil && user != nil && user.Email != "" {
		go func(email string) {
			_ = utils.SendOrderStatusEmail(order, email, "delivered")
		}(user.Email)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Commande marquée livrée", "order": order})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de commande invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.Orders.Cancel(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if user, err := h.Users.FindByID(ctx, order.User); err == nil && user != nil && user.Email != "" {
		go func(email string) {
			_ = utils.SendOrderStatusEmail(order, email, "cancelled")
		}(user.Email)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Commande annulée", "order": order})
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de commande invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Orders.DeleteOrder(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Commande supprimée"})
}
