package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vastra_back_end/internal/database"

	"github.com/gin-gonic/gin"
)

const (
	// Limites par endpoint
	OTPMaxRequests = 3
	APIMaxRequests = 100 // Par minute pour les endpoints généraux

	// Durées de cooldown
	OTPCooldown = 10 * time.Minute
	APICooldown = 1 * time.Minute
)

// OTPRateLimit limite les demandes de code OTP par numéro de téléphone.
// Chaque SMS coûte de l'argent : 3 demandes max par fenêtre de 10 minutes.
func OTPRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			Phone string `json:"phone"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Phone == "" {
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			c.Next()
			return
		}

		// Remettre le body pour les handlers suivants
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		ctx := context.Background()
		key := "otp_requests:" + input.Phone

		attempts, _ := database.Redis.Get(ctx, key).Int()
		if attempts >= OTPMaxRequests {
			ttl := database.Redis.TTL(ctx, key).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de demandes de code. Réessayez dans %d minutes", int(ttl.Minutes())+1),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		// Ne compter que les demandes effectivement parties
		if c.Writer.Status() == http.StatusOK {
			pipe := database.Redis.Pipeline()
			pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, OTPCooldown)
			pipe.Exec(ctx)
		}
	}
}

// APIRateLimit limite le nombre de requêtes par IP (général).
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		ip := c.ClientIP()
		key := "api_requests:" + ip

		requests, _ := database.Redis.Get(ctx, key).Int()
		if requests >= APIMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Trop de requêtes. Réessayez dans 1 minute",
				"retry_after": 60,
			})
			c.Abort()
			return
		}

		pipe := database.Redis.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, APICooldown)
		pipe.Exec(ctx)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", APIMaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", APIMaxRequests-requests-1))

		c.Next()
	}
}
