package main

import (
	"context"

	"uex-courier-api-server/config"
	"uex-courier-api-server/internal/api/routes"
	"uex-courier-api-server/internal/auth"
	"uex-courier-api-server/internal/database"
	"uex-courier-api-server/internal/lifecycle"
	"uex-courier-api-server/internal/s3"
	"uex-courier-api-server/internal/socket"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		logrus.Fatalf("Could not load config: %v", err)
	}

	if err := auth.Configure(cfg.JWT.Secret, cfg.JWT.Expiration); err != nil {
		logrus.Fatalf("Invalid JWT configuration: %v", err)
	}

	client, err := database.Connect(cfg.Mongo.URI)
	if err != nil {
		logrus.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.Mongo.DBName)

	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		logrus.Fatalf("Failed to create indexes: %v", err)
	}
	if err := database.SeedAdmin(db, cfg); err != nil {
		logrus.Fatalf("Failed to seed admin account: %v", err)
	}
	if err := database.SeedPricingConfig(db); err != nil {
		logrus.Fatalf("Failed to seed pricing config: %v", err)
	}

	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		logrus.Fatalf("Failed to initialize S3 uploader: %v", err)
	}

	wsHub := socket.NewHub()
	engine := lifecycle.NewEngine(client, db, wsHub)

	router := routes.SetupRouter(cfg, db, engine, s3Uploader, wsHub)

	logrus.Infof("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logrus.Fatalf("Failed to run server: %v", err)
	}
}
