package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"uex-courier-api-server/internal/bulk"
	"uex-courier-api-server/internal/lifecycle"
	"uex-courier-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type BulkHandler struct {
	DB     *mongo.Database
	Booker *Booker
	Engine *lifecycle.Engine
}

// ColumnSync is the admin spreadsheet sync: one xlsx upload, one
// target column from the allow-list, rows matched by AWB. Rows are
// processed independently; the response carries the aggregate counts
// plus a per-row error list.
func (h *BulkHandler) ColumnSync(c *gin.Context) {
	targetColumn := c.PostForm("targetColumn")
	column, ok := bulk.AllowedColumns[targetColumn]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "targetColumn is not in the allowed set"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A spreadsheet file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	rows, err := bulk.ParseSyncSheet(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID := c.GetString("user_id")
	success := 0
	var rowErrors []bulk.RowError
	for _, row := range rows {
		if err := h.applySync(context.Background(), column, row, adminID); err != nil {
			rowErrors = append(rowErrors, bulk.RowError{Row: row.Row, Err: fmt.Sprintf("%s: %v", row.AWB, err)})
			continue
		}
		success++
	}

	logrus.WithFields(logrus.Fields{
		"column":  column.Name,
		"success": success,
		"failed":  len(rowErrors),
	}).Info("bulk column sync finished")

	c.JSON(http.StatusOK, gin.H{"results": gin.H{
		"success": success,
		"failed":  len(rowErrors),
		"errors":  rowErrors,
	}})
}

func (h *BulkHandler) applySync(ctx context.Context, column bulk.TargetColumn, row bulk.SyncRow, adminID string) error {
	value, err := column.Parse(row.Value)
	if err != nil {
		return err
	}

	// Status changes go through the engine so the event pairing holds
	// even for spreadsheet-driven updates.
	if column.Name == "current_status" {
		_, err := h.Engine.Transition(ctx, lifecycle.TransitionInput{
			AWB:      row.AWB,
			Next:     value.(string),
			Location: "Bulk update",
			Actor:    models.RoleAdmin,
			ActorID:  adminID,
			Override: true,
		})
		return err
	}

	result, err := h.DB.Collection("shipments").UpdateOne(ctx,
		bson.M{"awb": row.AWB},
		bson.M{"$set": bson.M{column.Field: value, "updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("no shipment with this AWB")
	}
	return nil
}

// BulkCreate is the seller order upload: one xlsx of shipment rows,
// an AWB generated per row, created rows returned for the one-time
// confirmation view.
func (h *BulkHandler) BulkCreate(c *gin.Context) {
	userID := c.GetString("user_id")
	// Admins may upload on behalf of a seller.
	if c.GetString("user_role") == models.RoleAdmin {
		if onBehalf := c.PostForm("userId"); onBehalf != "" {
			userID = onBehalf
		}
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A spreadsheet file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	rows, rowErrors, err := bulk.ParseShipmentSheet(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created := make([]models.Shipment, 0, len(rows))
	for _, row := range rows {
		req := CreateShipmentRequest{
			Sender:        partyFromModel(row.Sender),
			Receiver:      partyFromModel(row.Receiver),
			WeightKG:      row.WeightKG,
			PackageType:   row.PackageType,
			PaymentMode:   row.PaymentMode,
			CODAmount:     row.CODAmount,
			DeclaredValue: row.DeclaredValue,
		}
		shipment, err := h.Booker.Book(context.Background(), &req, userID, "seller", models.RoleSeller)
		if err != nil {
			rowErrors = append(rowErrors, bulk.RowError{Row: row.Row, Err: err.Error()})
			continue
		}
		created = append(created, *shipment)
	}

	c.JSON(http.StatusCreated, gin.H{"shipments": created, "errors": rowErrors})
}

func partyFromModel(p models.Party) PartyRequest {
	return PartyRequest{
		Name:    p.Name,
		Phone:   p.Phone,
		Address: p.Address,
		City:    p.City,
		State:   p.State,
		Pincode: p.Pincode,
	}
}
