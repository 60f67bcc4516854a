package handlers

import (
	"context"
	"net/http"

	"uex-courier-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TrackingHandler struct {
	DB *mongo.Database
}

// Track is the anonymous AWB lookup backing the public tracking page:
// shipment summary, event trail newest first, and POD image URLs.
func (h *TrackingHandler) Track(c *gin.Context) {
	awbCode := c.Param("awb")

	var shipment models.Shipment
	err := h.DB.Collection("shipments").FindOne(context.Background(), bson.M{"awb": awbCode}).Decode(&shipment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "No shipment found for this AWB"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve shipment"})
		}
		return
	}

	eventOpts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := h.DB.Collection("tracking_events").Find(context.Background(), bson.M{"awb": awbCode}, eventOpts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query tracking events"})
		return
	}
	defer cursor.Close(context.Background())

	var events []models.TrackingEvent
	if err = cursor.All(context.Background(), &events); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode tracking events"})
		return
	}
	if events == nil {
		events = []models.TrackingEvent{}
	}

	proofCursor, err := h.DB.Collection("delivery_proofs").Find(context.Background(), bson.M{"awb": awbCode})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query proof images"})
		return
	}
	defer proofCursor.Close(context.Background())

	var proofs []models.DeliveryProof
	if err = proofCursor.All(context.Background(), &proofs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode proof images"})
		return
	}
	proofURLs := make([]string, 0, len(proofs))
	for _, p := range proofs {
		proofURLs = append(proofURLs, p.PhotoURL)
	}

	// The public view hides internal booking fields.
	c.JSON(http.StatusOK, gin.H{
		"awb":           shipment.AWB,
		"currentStatus": shipment.CurrentStatus,
		"failureReason": shipment.FailureReason,
		"origin":        gin.H{"city": shipment.Sender.City, "state": shipment.Sender.State},
		"destination":   gin.H{"city": shipment.Receiver.City, "state": shipment.Receiver.State},
		"bookedAt":      shipment.CreatedAt,
		"events":        events,
		"proofImages":   proofURLs,
	})
}
