package handlers

import (
	"context"
	"net/http"

	"uex-courier-api-server/config"
	"uex-courier-api-server/internal/models"
	"uex-courier-api-server/internal/pdf"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type DocumentHandler struct {
	DB  *mongo.Database
	Cfg config.Config
}

func (h *DocumentHandler) findShipment(c *gin.Context) (*models.Shipment, bool) {
	var shipment models.Shipment
	err := h.DB.Collection("shipments").FindOne(context.Background(), bson.M{"awb": c.Param("awb")}).Decode(&shipment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve shipment"})
		}
		return nil, false
	}
	return &shipment, true
}

// Invoice streams the tax invoice PDF for one shipment. Non-admin
// callers only get invoices for their own bookings.
func (h *DocumentHandler) Invoice(c *gin.Context) {
	shipment, ok := h.findShipment(c)
	if !ok {
		return
	}
	if role := c.GetString("user_role"); role != models.RoleAdmin && shipment.CreatedBy != c.GetString("user_id") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
		return
	}

	// Seller bookings head the invoice with the business profile.
	var seller *models.Profile
	if userID, err := primitive.ObjectIDFromHex(shipment.CreatedBy); err == nil {
		var profile models.Profile
		err := h.DB.Collection("profiles").FindOne(context.Background(),
			bson.M{"userID": userID, "businessName": bson.M{"$nin": bson.A{"", nil}}}).Decode(&profile)
		if err == nil {
			seller = &profile
		}
	}

	data, err := pdf.Invoice(shipment, seller)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render invoice", "details": err.Error()})
		return
	}

	c.Header("Content-Disposition", `inline; filename="invoice-`+shipment.AWB+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// Label streams the printable 4x6 label. The route is public, like
// the tracking page: the label only carries what is printed on the
// physical parcel anyway.
func (h *DocumentHandler) Label(c *gin.Context) {
	shipment, ok := h.findShipment(c)
	if !ok {
		return
	}

	data, err := pdf.Label(shipment, h.Cfg.Server.PublicBaseURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render label", "details": err.Error()})
		return
	}

	c.Header("Content-Disposition", `inline; filename="label-`+shipment.AWB+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
