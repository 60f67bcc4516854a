package handlers

import (
	"context"
	"net/http"
	"time"

	"uex-courier-api-server/internal/auth"
	"uex-courier-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuthHandler struct {
	DB *mongo.Database
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a customer account with its profile row.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	users := h.DB.Collection("users")
	count, err := users.CountDocuments(context.Background(), bson.M{"email": req.Email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for user"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Email:     req.Email,
		Name:      req.Name,
		Password:  hashedPassword,
		Role:      models.RoleUser,
		Status:    "active",
		CreatedAt: time.Now(),
	}
	result, err := users.InsertOne(context.Background(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}
	userID := result.InsertedID.(primitive.ObjectID)

	profile := models.Profile{
		UserID:    userID,
		Phone:     req.Phone,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := h.DB.Collection("profiles").InsertOne(context.Background(), profile); err != nil {
		// Roll back the auth identity so a half-created account cannot log in.
		_, _ = users.DeleteOne(context.Background(), bson.M{"_id": userID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	token, err := auth.GenerateJWT(req.Email, models.RoleUser, userID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "token": token, "role": models.RoleUser})
}

// Login checks credentials and returns a JWT carrying the account's
// role; clients route to the matching area off that claim.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if user.Status != "active" {
		c.JSON(http.StatusForbidden, gin.H{"error": "This account has been disabled"})
		return
	}
	if !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateJWT(user.Email, user.Role, user.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "token": token, "role": user.Role, "name": user.Name})
}

type UpdateProfileRequest struct {
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	BusinessName string `json:"businessName"`
	GSTNumber    string `json:"gstNumber"`
}

// GetProfile returns the authenticated account's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var profile models.Profile
	err = h.DB.Collection("profiles").FindOne(context.Background(), bson.M{"userID": userID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		}
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates contact/business info on the caller's profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{
		"phone":     req.Phone,
		"address":   req.Address,
		"city":      req.City,
		"state":     req.State,
		"pincode":   req.Pincode,
		"updatedAt": time.Now(),
	}
	// Business fields only apply to seller accounts.
	if c.GetString("user_role") == models.RoleSeller {
		update["businessName"] = req.BusinessName
		update["gstNumber"] = req.GSTNumber
	}

	_, err = h.DB.Collection("profiles").UpdateOne(context.Background(), bson.M{"userID": userID}, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}
