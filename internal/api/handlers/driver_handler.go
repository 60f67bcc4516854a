package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"uex-courier-api-server/internal/lifecycle"
	"uex-courier-api-server/internal/models"
	"uex-courier-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DriverHandler struct {
	DB       *mongo.Database
	Engine   *lifecycle.Engine
	Uploader *s3.Uploader
}

// activeStatuses is what the driver task list shows: everything still
// requiring driver action.
var activeStatuses = []string{
	lifecycle.StatusCreated,
	lifecycle.StatusPickedUp,
	lifecycle.StatusInTransit,
	lifecycle.StatusOutForDelivery,
	lifecycle.StatusUndelivered,
	lifecycle.StatusDeliveryFailed,
	lifecycle.StatusPickupFailed,
	lifecycle.StatusRTOInitiated,
}

// GetTasks lists the shipments assigned to the calling driver.
func (h *DriverHandler) GetTasks(c *gin.Context) {
	driverID := c.GetString("user_id")

	filter := bson.M{
		"driverID":      driverID,
		"currentStatus": bson.M{"$in": activeStatuses},
	}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := h.DB.Collection("shipments").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query tasks"})
		return
	}
	defer cursor.Close(context.Background())

	var tasks []models.Shipment
	if err = cursor.All(context.Background(), &tasks); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode tasks"})
		return
	}
	if tasks == nil {
		tasks = []models.Shipment{}
	}

	c.JSON(http.StatusOK, tasks)
}

type DriverStatusRequest struct {
	Status   string `json:"status" binding:"required"`
	Location string `json:"location" binding:"required"`
	Reason   string `json:"reason"`
}

// UpdateStatus applies one guided transition from the driver app. The
// engine enforces the adjacency table, the reason requirement on
// failures and the proof-photo precondition on delivery.
func (h *DriverHandler) UpdateStatus(c *gin.Context) {
	awbCode := c.Param("awb")
	driverID := c.GetString("user_id")

	// Drivers may only touch their own assignments.
	count, err := h.DB.Collection("shipments").CountDocuments(context.Background(),
		bson.M{"awb": awbCode, "driverID": driverID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify assignment"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No task with this AWB is assigned to you"})
		return
	}

	var req DriverStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shipment, err := h.Engine.Transition(context.Background(), lifecycle.TransitionInput{
		AWB:      awbCode,
		Next:     req.Status,
		Location: req.Location,
		Reason:   req.Reason,
		Actor:    models.RoleDriver,
		ActorID:  driverID,
	})
	if err != nil {
		transitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "shipment": shipment})
}

// UploadProofs accepts one or more proof-of-delivery photos as
// multipart "photos" files. Files are uploaded sequentially; a failed
// file is skipped and reported, it does not abort the rest.
func (h *DriverHandler) UploadProofs(c *gin.Context) {
	awbCode := c.Param("awb")
	driverID := c.GetString("user_id")

	var shipment models.Shipment
	err := h.DB.Collection("shipments").FindOne(context.Background(),
		bson.M{"awb": awbCode, "driverID": driverID}).Decode(&shipment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "No task with this AWB is assigned to you"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify assignment"})
		}
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one photo is required"})
		return
	}

	uploaded := 0
	var failed []string
	for _, fileHeader := range files {
		url, key, err := uploadProofObject(c.Request.Context(), h.Uploader, awbCode, fileHeader)
		if err != nil {
			logrus.WithError(err).WithField("file", fileHeader.Filename).Warn("proof photo upload failed")
			failed = append(failed, fileHeader.Filename)
			continue
		}
		proof := models.DeliveryProof{
			ShipmentID: shipment.ID,
			AWB:        awbCode,
			PhotoURL:   url,
			ObjectKey:  key,
			UploadedBy: driverID,
			CreatedAt:  time.Now(),
		}
		if _, err := h.DB.Collection("delivery_proofs").InsertOne(context.Background(), proof); err != nil {
			logrus.WithError(err).Warn("proof photo insert failed")
			failed = append(failed, fileHeader.Filename)
			continue
		}
		uploaded++
	}

	if uploaded == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "All photo uploads failed", "failed": failed})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "uploaded": uploaded, "failed": failed})
}

func uploadProofObject(ctx context.Context, uploader *s3.Uploader, awbCode string, fileHeader *multipart.FileHeader) (string, string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	key := fmt.Sprintf("pod/%s/%s", awbCode, uuid.New().String())
	url, err := uploader.UploadFile(ctx, file, key, contentType)
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}
