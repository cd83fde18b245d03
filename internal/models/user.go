package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User — compte client identifié par son numéro de téléphone (10 chiffres, unique).
// Pas de mot de passe : l'authentification passe par un code OTP envoyé par SMS.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName  string             `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string             `bson:"phone" json:"phone"`
	Avatar    string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	Role      string             `bson:"role" json:"role"` // "user" ou "admin"
	IsBlocked bool               `bson:"isBlocked" json:"isBlocked"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
