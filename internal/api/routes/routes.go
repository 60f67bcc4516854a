package routes

import (
	"uex-courier-api-server/config"
	"uex-courier-api-server/internal/api/handlers"
	"uex-courier-api-server/internal/api/middleware"
	"uex-courier-api-server/internal/lifecycle"
	"uex-courier-api-server/internal/models"
	"uex-courier-api-server/internal/s3"
	"uex-courier-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires the handlers and route groups.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	engine *lifecycle.Engine,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())

	if cfg.Server.CORSOrigin != "" {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     []string{cfg.Server.CORSOrigin},
			AllowMethods:     []string{"PUT", "PATCH", "GET", "DELETE", "POST"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
		}))
	}

	booker := &handlers.Booker{DB: db, Engine: engine}

	authHandler := &handlers.AuthHandler{DB: db}
	shipmentHandler := &handlers.ShipmentHandler{DB: db, Booker: booker, Engine: engine}
	trackingHandler := &handlers.TrackingHandler{DB: db}
	driverHandler := &handlers.DriverHandler{DB: db, Engine: engine, Uploader: s3Uploader}
	adminHandler := &handlers.AdminHandler{DB: db, Engine: engine, Uploader: s3Uploader}
	bulkHandler := &handlers.BulkHandler{DB: db, Booker: booker, Engine: engine}
	partnerHandler := &handlers.PartnerHandler{DB: db, Booker: booker, Engine: engine}
	documentHandler := &handlers.DocumentHandler{DB: db, Cfg: cfg}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === PUBLIC ROUTES ===

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		public := apiV1.Group("/")
		{
			// Anonymous AWB lookup and the printable label
			public.GET("/track/:awb", trackingHandler.Track)
			public.GET("/print/:awb", documentHandler.Label)
		}

		// === PROTECTED ROUTES ===

		// Profile, any authenticated account
		profile := apiV1.Group("/profile")
		profile.Use(middleware.Authenticate())
		{
			profile.GET("/", authHandler.GetProfile)
			profile.PUT("/", authHandler.UpdateProfile)
		}

		// Customer booking and history (admins share these endpoints)
		shipments := apiV1.Group("/shipments")
		shipments.Use(middleware.Authenticate())
		shipments.Use(middleware.Authorize(models.RoleUser, models.RoleSeller, models.RoleAdmin))
		{
			shipments.POST("/", shipmentHandler.CreateShipment)
			shipments.GET("/", shipmentHandler.ListShipments)
			shipments.GET("/:awb", shipmentHandler.GetShipment)
			shipments.GET("/:awb/invoice", documentHandler.Invoice)
			shipments.POST("/:awb/cancel", shipmentHandler.CancelShipment)
		}

		// Driver web app
		driver := apiV1.Group("/driver")
		driver.Use(middleware.Authenticate())
		driver.Use(middleware.Authorize(models.RoleDriver, models.RoleAdmin))
		{
			driver.GET("/tasks", driverHandler.GetTasks)
			driver.POST("/shipments/:awb/status", driverHandler.UpdateStatus)
			driver.POST("/shipments/:awb/pod", driverHandler.UploadProofs)
		}

		// Seller portal
		partner := apiV1.Group("/partner")
		partner.Use(middleware.Authenticate())
		partner.Use(middleware.Authorize(models.RoleSeller))
		{
			partner.GET("/orders", partnerHandler.GetOrders)
			partner.POST("/orders", partnerHandler.CreateOrder)
			partner.POST("/orders/bulk", bulkHandler.BulkCreate)
			partner.POST("/orders/:awb/cancel", shipmentHandler.CancelShipment)
			partner.GET("/invoices", partnerHandler.GetInvoices)
			partner.GET("/api-key", partnerHandler.GetAPIKey)
			partner.POST("/api-key", partnerHandler.RegenerateAPIKey)
		}

		// External integration API, authenticated by the seller API key
		external := apiV1.Group("/external")
		external.Use(middleware.APIKeyAuth(db))
		{
			external.POST("/shipments", partnerHandler.CreateOrder)
			external.GET("/shipments", partnerHandler.GetOrders)
			external.GET("/track/:awb", trackingHandler.Track)
		}

		// Admin console, requires the "admin" role
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize(models.RoleAdmin))
		{
			// Account management
			admin.POST("/drivers", adminHandler.CreateDriver)
			admin.POST("/partners", adminHandler.CreatePartner)
			admin.POST("/users/reset-password", adminHandler.ResetPassword)

			// Directories
			admin.GET("/staff", adminHandler.GetStaff)
			admin.PUT("/staff/:id", adminHandler.UpdateStaff)
			admin.GET("/customers", adminHandler.GetCustomers)
			admin.GET("/sellers", adminHandler.GetSellers)

			// Pricing config (package types)
			admin.GET("/pricing", adminHandler.GetPricingConfig)
			admin.PUT("/pricing", adminHandler.UpdatePricingConfig)

			// Shipment operations
			admin.PUT("/shipments/:awb/driver", adminHandler.AssignDriver)
			admin.PUT("/shipments/:awb/status", adminHandler.OverrideStatus)
			admin.DELETE("/shipments/:awb", adminHandler.DeleteShipment)
			admin.POST("/shipments/bulk-sync", bulkHandler.ColumnSync)
			admin.POST("/shipments/bulk-create", bulkHandler.BulkCreate)

			// Proof-of-delivery management
			admin.POST("/shipments/:awb/pod", adminHandler.UploadProof)
			admin.DELETE("/pod/:id", adminHandler.DeleteProof)
		}
	}

	return router
}
