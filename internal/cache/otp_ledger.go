package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultOTPTTL — durée de vie d'un code OTP. Au-delà, le code est considéré
// comme inexistant.
const DefaultOTPTTL = 5 * time.Minute

// OTPLedger — registre clé/valeur à expiration pour les codes OTP. Les clés
// sont préfixées par usage ("signup:<phone>", "login:<phone>"). Injecté dans
// l'orchestrateur d'authentification, jamais importé en global.
type OTPLedger interface {
	Set(ctx context.Context, key, code string) error
	// Get retourne (code, true) si l'entrée existe et n'a pas expiré.
	// Une entrée expirée se comporte exactement comme une entrée absente.
	Get(ctx context.Context, key string) (string, bool)
	Delete(ctx context.Context, key string)
}

// --- Implémentation Redis (production) ---

type RedisOTPLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisOTPLedger(client *redis.Client) *RedisOTPLedger {
	return &RedisOTPLedger{client: client, ttl: DefaultOTPTTL}
}

func (l *RedisOTPLedger) Set(ctx context.Context, key, code string) error {
	return l.client.Set(ctx, "otp:"+key, code, l.ttl).Err()
}

func (l *RedisOTPLedger) Get(ctx context.Context, key string) (string, bool) {
	val, err := l.client.Get(ctx, "otp:"+key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		// Panne Redis : on traite comme absent, le client peut redemander un code
		log.Printf("⚠️ Erreur lecture OTP %s: %v", key, err)
		return "", false
	}
	return val, true
}

func (l *RedisOTPLedger) Delete(ctx context.Context, key string) {
	if err := l.client.Del(ctx, "otp:"+key).Err(); err != nil {
		log.Printf("⚠️ Erreur suppression OTP %s: %v", key, err)
	}
}

// --- Implémentation mémoire (tests, déploiement sans Redis) ---

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

// MemoryOTPLedger — map protégée par mutex, expiration paresseuse à la lecture.
// Les codes sont perdus au redémarrage du process : assumé, ils se redemandent.
type MemoryOTPLedger struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryOTPLedger() *MemoryOTPLedger {
	return &MemoryOTPLedger{
		entries: make(map[string]memoryEntry),
		ttl:     DefaultOTPTTL,
		now:     time.Now,
	}
}

// WithClock remplace l'horloge (tests de la borne d'expiration).
func (l *MemoryOTPLedger) WithClock(now func() time.Time) *MemoryOTPLedger {
	l.now = now
	return l
}

func (l *MemoryOTPLedger) Set(_ context.Context, key, code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = memoryEntry{code: code, expiresAt: l.now().Add(l.ttl)}
	return nil
}

func (l *MemoryOTPLedger) Get(_ context.Context, key string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[key]
	if !ok {
		return "", false
	}
	if l.now().After(entry.expiresAt) {
		delete(l.entries, key)
		return "", false
	}
	return entry.code, true
}

func (l *MemoryOTPLedger) Delete(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}
