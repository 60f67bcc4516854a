package database

import (
	"context"
	"time"

	"uex-courier-api-server/config"
	"uex-courier-api-server/internal/auth"
	"uex-courier-api-server/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedAdmin creates the bootstrap admin account if none exists.
func SeedAdmin(db *mongo.Database, cfg config.Config) error {
	email := cfg.Seed.AdminEmail
	if email == "" {
		email = "admin@uex.example.com"
	}
	password := cfg.Seed.AdminPassword
	if password == "" {
		password = "changeme"
	}

	userCollection := db.Collection("users")

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"role": models.RoleAdmin})
	if err != nil {
		return err
	}
	if count > 0 {
		logrus.Info("Admin account already exists. Seeding skipped.")
		return nil
	}

	logrus.Info("Admin account not found. Seeding...")
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:     email,
		Name:      "Administrator",
		Password:  hashedPassword,
		Role:      models.RoleAdmin,
		Status:    "active",
		CreatedAt: time.Now(),
	}

	if _, err := userCollection.InsertOne(context.Background(), admin); err != nil {
		return err
	}

	logrus.Info("Admin account seeded successfully.")
	return nil
}

// SeedPricingConfig inserts the default package type list when the
// collection is empty. Admins edit it afterwards.
func SeedPricingConfig(db *mongo.Database) error {
	collection := db.Collection("pricing_config")

	count, err := collection.CountDocuments(context.Background(), bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	cfg := models.PricingConfig{
		PackageTypes: []string{"Documents", "Parcel", "Fragile", "Electronics", "Clothing"},
		UpdatedAt:    time.Now(),
	}
	_, err = collection.InsertOne(context.Background(), cfg)
	return err
}
