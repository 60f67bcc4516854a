package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"uex-courier-api-server/internal/lifecycle"
	"uex-courier-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ShipmentHandler struct {
	DB     *mongo.Database
	Booker *Booker
	Engine *lifecycle.Engine
}

// CreateShipment books a shipment for the authenticated customer.
func (h *ShipmentHandler) CreateShipment(c *gin.Context) {
	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	role := c.GetString("user_role")

	shipment, err := h.Booker.Book(context.Background(), &req, userID, bookingOrigin(role), role)
	if err != nil {
		switch {
		case errors.Is(err, errCODAmountRequired),
			errors.Is(err, errCODAmountForbidden),
			errors.Is(err, errUnknownPackageType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create shipment", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, shipment)
}

// ListShipments returns the caller's shipments with the history
// filters. Admins see everything.
func (h *ShipmentHandler) ListShipments(c *gin.Context) {
	filter := bson.M{}
	if c.GetString("user_role") != models.RoleAdmin {
		filter["createdBy"] = c.GetString("user_id")
	}
	if status := c.Query("status"); status != "" {
		normalized, ok := lifecycle.Normalize(status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
			return
		}
		filter["currentStatus"] = normalized
	}
	if q := c.Query("q"); q != "" {
		filter["$or"] = []bson.M{
			{"awb": bson.M{"$regex": q, "$options": "i"}},
			{"receiver.name": bson.M{"$regex": q, "$options": "i"}},
			{"receiver.phone": bson.M{"$regex": q, "$options": "i"}},
		}
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected YYYY-MM-DD"})
			return
		}
		filter["createdAt"] = bson.M{"$gte": t}
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected YYYY-MM-DD"})
			return
		}
		cond, _ := filter["createdAt"].(bson.M)
		if cond == nil {
			cond = bson.M{}
		}
		cond["$lt"] = t.AddDate(0, 0, 1)
		filter["createdAt"] = cond
	}

	limit := int64(100)
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.ParseInt(l, 10, 64); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := h.DB.Collection("shipments").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query shipments"})
		return
	}
	defer cursor.Close(context.Background())

	var shipments []models.Shipment
	if err = cursor.All(context.Background(), &shipments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode shipments"})
		return
	}
	if shipments == nil {
		shipments = []models.Shipment{}
	}

	c.JSON(http.StatusOK, shipments)
}

// GetShipment returns one shipment by AWB. Non-admin callers only see
// their own bookings.
func (h *ShipmentHandler) GetShipment(c *gin.Context) {
	filter := bson.M{"awb": c.Param("awb")}
	if c.GetString("user_role") != models.RoleAdmin {
		filter["createdBy"] = c.GetString("user_id")
	}

	var shipment models.Shipment
	err := h.DB.Collection("shipments").FindOne(context.Background(), filter).Decode(&shipment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve shipment"})
		}
		return
	}

	c.JSON(http.StatusOK, shipment)
}

// CancelShipment applies the customer cancel rule: only before pickup.
func (h *ShipmentHandler) CancelShipment(c *gin.Context) {
	awbCode := c.Param("awb")
	userID := c.GetString("user_id")
	role := c.GetString("user_role")

	if role != models.RoleAdmin {
		// Ownership check before the transition.
		count, err := h.DB.Collection("shipments").CountDocuments(context.Background(),
			bson.M{"awb": awbCode, "createdBy": userID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify shipment"})
			return
		}
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
			return
		}
	}

	shipment, err := h.Engine.Transition(context.Background(), lifecycle.TransitionInput{
		AWB:      awbCode,
		Next:     lifecycle.StatusCancelled,
		Location: "Cancelled by " + role,
		Actor:    role,
		ActorID:  userID,
	})
	if err != nil {
		transitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "shipment": shipment})
}
