package database

import (
	"context"
	"log"
	"os"
	"time"

	"vastra_back_end/internal/config"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// --- Variables Globales ---
var (
	Mongo *mongo.Client
	DB    *mongo.Database
	Redis *redis.Client
)

// ConnectDatabases initialise MongoDB et Redis. Fatal si l'un des deux échoue :
// sans base de données le serveur ne sert à rien.
func ConnectDatabases() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	connectMongo(ctx)
	connectRedis(ctx)

	log.Println("✅ Toutes les bases de données sont connectées")
}

func connectMongo(ctx context.Context) {
	uri := config.Getenv("MONGO_URI", "mongodb://localhost:27017")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatal("❌ Erreur connexion MongoDB:", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal("❌ MongoDB injoignable:", err)
	}

	dbName := config.Getenv("MONGO_DB", "vastra")

	Mongo = client
	DB = client.Database(dbName)
	log.Println("✅ Connecté à MongoDB :", dbName)
}

func connectRedis(ctx context.Context) {
	Redis = redis.NewClient(&redis.Options{
		Addr:     config.Getenv("REDIS_HOST", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Fatal("❌ Erreur connexion Redis:", err)
	}
	log.Println("✅ Connecté à Redis")
}

// Close ferme proprement les connexions (utilisé à l'arrêt du serveur).
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if Mongo != nil {
		if err := Mongo.Disconnect(ctx); err != nil {
			log.Println("⚠️ Erreur fermeture MongoDB:", err)
		}
	}
	if Redis != nil {
		if err := Redis.Close(); err != nil {
			log.Println("⚠️ Erreur fermeture Redis:", err)
		}
	}
}
