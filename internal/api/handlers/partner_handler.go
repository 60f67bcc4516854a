package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"uex-courier-api-server/internal/lifecycle"
	"uex-courier-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PartnerHandler struct {
	DB     *mongo.Database
	Booker *Booker
	Engine *lifecycle.Engine
}

// CreateOrder books a single shipment under the seller's account,
// using the professional AWB format.
func (h *PartnerHandler) CreateOrder(c *gin.Context) {
	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shipment, err := h.Booker.Book(context.Background(), &req, c.GetString("user_id"), "seller", models.RoleSeller)
	if err != nil {
		switch {
		case errors.Is(err, errCODAmountRequired),
			errors.Is(err, errCODAmountForbidden),
			errors.Is(err, errUnknownPackageType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, shipment)
}

// GetOrders lists the seller's shipments, newest first, flagging which
// rows are still cancellable (uncommitted).
func (h *PartnerHandler) GetOrders(c *gin.Context) {
	filter := bson.M{"createdBy": c.GetString("user_id")}
	if status := c.Query("status"); status != "" {
		normalized, ok := lifecycle.Normalize(status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
			return
		}
		filter["currentStatus"] = normalized
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("shipments").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query orders"})
		return
	}
	defer cursor.Close(context.Background())

	var shipments []models.Shipment
	if err = cursor.All(context.Background(), &shipments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode orders"})
		return
	}

	type orderView struct {
		models.Shipment
		Cancellable bool `json:"cancellable"`
	}
	views := make([]orderView, 0, len(shipments))
	for _, s := range shipments {
		views = append(views, orderView{Shipment: s, Cancellable: lifecycle.CanCancel(s.CurrentStatus)})
	}

	c.JSON(http.StatusOK, views)
}

// GetInvoices lists the seller's delivered shipments as invoice rows;
// the PDF itself is generated per AWB by the document handler.
func (h *PartnerHandler) GetInvoices(c *gin.Context) {
	filter := bson.M{
		"createdBy":     c.GetString("user_id"),
		"currentStatus": lifecycle.StatusDelivered,
	}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := h.DB.Collection("shipments").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query invoices"})
		return
	}
	defer cursor.Close(context.Background())

	var shipments []models.Shipment
	if err = cursor.All(context.Background(), &shipments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode invoices"})
		return
	}

	type invoiceRow struct {
		InvoiceNo   string    `json:"invoiceNo"`
		AWB         string    `json:"awb"`
		Date        time.Time `json:"date"`
		PaymentMode string    `json:"paymentMode"`
		Amount      float64   `json:"amount"`
	}
	invoices := make([]invoiceRow, 0, len(shipments))
	for _, s := range shipments {
		amount := s.DeclaredValue
		if s.PaymentMode == models.PaymentModeCOD {
			amount = s.CODAmount
		}
		invoices = append(invoices, invoiceRow{
			InvoiceNo:   "INV-" + s.AWB,
			AWB:         s.AWB,
			Date:        s.UpdatedAt,
			PaymentMode: s.PaymentMode,
			Amount:      amount,
		})
	}

	c.JSON(http.StatusOK, invoices)
}

// RegenerateAPIKey issues (or rotates) the seller's integration token.
// One key per account; regeneration overwrites.
func (h *PartnerHandler) RegenerateAPIKey(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	key := "uex_live_" + strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
	now := time.Now()

	_, err = h.DB.Collection("api_keys").UpdateOne(context.Background(),
		bson.M{"userID": userID},
		bson.M{
			"$set":         bson.M{"key": key, "updatedAt": now},
			"$setOnInsert": bson.M{"userID": userID, "createdAt": now},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate API key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "apiKey": key})
}

// GetAPIKey returns the seller's current key, if one was issued.
func (h *PartnerHandler) GetAPIKey(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var apiKey models.APIKey
	err = h.DB.Collection("api_keys").FindOne(context.Background(), bson.M{"userID": userID}).Decode(&apiKey)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "No API key issued yet"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve API key"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"apiKey": apiKey.Key, "updatedAt": apiKey.UpdatedAt})
}
