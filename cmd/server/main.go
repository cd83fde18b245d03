package main

import (
	"log"
	"os"

	"vastra_back_end/internal/cache"
	"vastra_back_end/internal/config"
	"vastra_back_end/internal/database"
	"vastra_back_end/internal/handlers"
	"vastra_back_end/internal/routes"
	"vastra_back_end/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
)

func main() {
	config.Load()

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Println("⚠️ Clé Stripe manquante — paiement carte désactivé")
	} else {
		log.Println("✅ Stripe initialisé")
	}

	database.ConnectDatabases()
	defer database.Close()
	services.ConnectMinio()

	// Stores MongoDB
	userStore := database.NewMongoUserStore(database.DB)
	productStore := database.NewMongoProductStore(database.DB)
	orderStore := database.NewMongoOrderStore(database.DB)

	// Collaborateurs externes — construits une fois, injectés partout
	shiprocket := services.NewShiprocketClient(services.ShiprocketConfigFromEnv())
	smsDispatcher := services.NewHTTPSMSDispatcher()
	otpLedger := cacheLedger()

	orderService := services.NewOrderService(userStore, productStore, orderStore, shiprocket)
	authService := services.NewAuthService(userStore, otpLedger, smsDispatcher)

	orderHandler := handlers.NewOrderHandler(orderService, userStore)
	shipmentHandler := handlers.NewShipmentHandler(orderService)
	userHandler := handlers.NewUserHandler(authService, userStore)
	paymentHandler := handlers.NewPaymentHandler(orderStore)

	r := gin.Default()
	r.Use(cors.Default())
	routes.RegisterRoutes(r, orderHandler, shipmentHandler, userHandler, paymentHandler)

	port := config.Getenv("PORT", "8080")
	log.Println("🚀 Serveur Vastra lancé sur le port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("❌ Serveur arrêté:", err)
	}
}

// cacheLedger choisit le backend du registre OTP : Redis en production,
// mémoire locale si OTP_LEDGER=memory (dev mono-instance).
func cacheLedger() cache.OTPLedger {
	if os.Getenv("OTP_LEDGER") == "memory" {
		log.Println("⚠️ Registre OTP en mémoire — les codes sont perdus au redémarrage")
		return cache.NewMemoryOTPLedger()
	}
	return cache.NewRedisOTPLedger(database.Redis)
}
