package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"vastra_back_end/internal/services"
	"vastra_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserHandler struct {
	Auth  *services.AuthService
	Users services.UserStore
}

func NewUserHandler(auth *services.AuthService, users services.UserStore) *UserHandler {
	return &UserHandler{Auth: auth, Users: users}
}

// Signup — étape 1 de l'inscription : envoi d'un code OTP par SMS.
func (h *UserHandler) Signup(c *gin.Context) {
	var input struct {
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()

	if err := h.Auth.RequestSignupCode(ctx, input.Phone); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Code envoyé par SMS"})
}

// VerifySignup — étape 2 : vérifie le code, crée le compte, émet un JWT.
func (h *UserHandler) VerifySignup(c *gin.Context) {
	var input struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.Auth.VerifySignupCode(ctx, input.Phone, input.OTP)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		log.Printf("❌ Erreur génération JWT: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Compte créé", "user": user, "token": token})
}

// Login — étape 1 de la connexion.
func (h *UserHandler) Login(c *gin.Context) {
	var input struct {
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()

	if err := h.Auth.RequestLoginCode(ctx, input.Phone); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Code envoyé par SMS"})
}

// VerifyLogin — étape 2 : vérifie le code et émet un JWT.
func (h *UserHandler) VerifyLogin(c *gin.Context) {
	var input struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.Auth.VerifyLoginCode(ctx, input.Phone, input.OTP)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		log.Printf("❌ Erreur génération JWT: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Connexion réussie", "user": user, "token": token})
}

// List retourne tous les utilisateurs (admin).
func (h *UserHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Update met à jour le profil (multipart : champs texte + avatar optionnel).
func (h *UserHandler) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant utilisateur invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()

	fields := bson.M{}
	if v := c.PostForm("fullName"); v != "" {
		fields["fullName"] = v
	}
	if v := c.PostForm("email"); v != "" {
		fields["email"] = v
	}
	if v := c.PostForm("address"); v != "" {
		fields["address"] = v
	}

	if file, err := c.FormFile("avatar"); err == nil {
		url, err := services.UploadAvatar(ctx, id.Hex(), file)
		if err != nil {
			log.Printf("❌ Erreur upload avatar: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload avatar"})
			return
		}
		fields["avatar"] = url
	}

	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun champ à mettre à jour"})
		return
	}

	user, err := h.Users.Update(ctx, id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profil mis à jour", "user": user})
}
