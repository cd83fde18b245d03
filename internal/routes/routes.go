package routes

import (
	"vastra_back_end/internal/handlers"
	"vastra_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine,
	orderH *handlers.OrderHandler,
	shipmentH *handlers.ShipmentHandler,
	userH *handlers.UserHandler,
	paymentH *handlers.PaymentHandler,
) {
	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// Utilisateurs / authentification OTP
	users := api.Group("/users")
	{
		users.POST("/signup", middleware.OTPRateLimit(), userH.Signup)
		users.POST("/signup/verify", userH.VerifySignup)
		users.POST("/login", middleware.OTPRateLimit(), userH.Login)
		users.POST("/login/verify", userH.VerifyLogin)
		users.GET("", middleware.AuthRequired(), middleware.RequireAdmin(), userH.List)
		users.PATCH("/:id", middleware.AuthRequired(), userH.Update)
	}

	// Commandes
	orders := api.Group("/product-orders")
	{
		orders.POST("", middleware.AuthRequired(), orderH.Create)
		orders.GET("", middleware.AuthRequired(), middleware.RequireAdmin(), orderH.List)
		orders.GET("/:id", middleware.AuthRequired(), orderH.GetByID)
		orders.GET("/user/:userId", middleware.AuthRequired(), orderH.ListByUser)
		orders.PATCH("/:id/deliver", middleware.AuthRequired(), middleware.RequireAdmin(), orderH.MarkDelivered)
		orders.PATCH("/:id/cancel", middleware.AuthRequired(), orderH.Cancel)
		orders.DELETE("/:id", middleware.AuthRequired(), middleware.RequireAdmin(), orderH.Delete)
	}

	// Expéditions Shiprocket
	shipping := api.Group("/shipping")
	{
		shipping.GET("/track/:shipmentId", middleware.AuthRequired(), shipmentH.Track)
		shipping.GET("/shipments", middleware.AuthRequired(), middleware.RequireAdmin(), shipmentH.List)
		shipping.GET("/serviceability/:pincode", shipmentH.Serviceability)
	}

	// Paiements
	payments := api.Group("/payments")
	{
		payments.POST("/razorpay/order", middleware.AuthRequired(), paymentH.CreateRazorpayOrder)
		payments.POST("/razorpay/verify", paymentH.VerifyRazorpayPayment)
		payments.POST("/stripe/intent", middleware.AuthRequired(), paymentH.CreateStripeIntent)
	}
}
