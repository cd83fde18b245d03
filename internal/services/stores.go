package services

import (
	"context"

	"vastra_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interfaces de persistance consommées par les orchestrateurs. Convention :
// une entité absente se traduit par (nil, nil), l'erreur est réservée aux
// pannes d'infrastructure. Implémentations MongoDB dans internal/database.

type UserStore interface {
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
}

type ProductStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
