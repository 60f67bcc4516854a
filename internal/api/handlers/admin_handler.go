package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"uex-courier-api-server/internal/auth"
	"uex-courier-api-server/internal/lifecycle"
	"uex-courier-api-server/internal/models"
	"uex-courier-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AdminHandler struct {
	DB       *mongo.Database
	Engine   *lifecycle.Engine
	Uploader *s3.Uploader
}

// --- Account creation (service-tier operations) ---

type CreateDriverRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"required"`
	Designation string `json:"designation" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
}

// CreateDriver creates a driver auth identity plus its staff record.
// The auth identity is rolled back when the staff insert fails so a
// half-created account cannot log in.
func (h *AdminHandler) CreateDriver(c *gin.Context) {
	var req CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := h.createAuthUser(req.Email, req.Name, req.Password, models.RoleDriver)
	if err != nil {
		writeUserCreationError(c, err)
		return
	}

	staff := models.Staff{
		UserID:      userID,
		Name:        req.Name,
		Phone:       req.Phone,
		Designation: req.Designation,
		Status:      "active",
		CreatedAt:   time.Now(),
	}
	if _, err := h.DB.Collection("staff").InsertOne(context.Background(), staff); err != nil {
		_, _ = h.DB.Collection("users").DeleteOne(context.Background(), bson.M{"_id": userID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create staff record", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "userID": userID.Hex(), "email": req.Email})
}

type CreatePartnerRequest struct {
	BusinessName string `json:"businessName" binding:"required"`
	ContactName  string `json:"contactName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required"`
	GSTNumber    string `json:"gstNumber"`
	Password     string `json:"password" binding:"required,min=8"`
}

// CreatePartner creates a seller auth identity plus its business
// profile, with the same rollback rule as CreateDriver.
func (h *AdminHandler) CreatePartner(c *gin.Context) {
	var req CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := h.createAuthUser(req.Email, req.ContactName, req.Password, models.RoleSeller)
	if err != nil {
		writeUserCreationError(c, err)
		return
	}

	profile := models.Profile{
		UserID:       userID,
		Phone:        req.Phone,
		BusinessName: req.BusinessName,
		GSTNumber:    req.GSTNumber,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if _, err := h.DB.Collection("profiles").InsertOne(context.Background(), profile); err != nil {
		_, _ = h.DB.Collection("users").DeleteOne(context.Background(), bson.M{"_id": userID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create partner profile", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "userID": userID.Hex(), "email": req.Email})
}

func (h *AdminHandler) createAuthUser(email, name, password, role string) (primitive.ObjectID, error) {
	users := h.DB.Collection("users")
	count, err := users.CountDocuments(context.Background(), bson.M{"email": email})
	if err != nil {
		return primitive.NilObjectID, err
	}
	if count > 0 {
		return primitive.NilObjectID, errEmailTaken
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return primitive.NilObjectID, err
	}

	user := models.User{
		Email:     email,
		Name:      name,
		Password:  hashedPassword,
		Role:      role,
		Status:    "active",
		CreatedAt: time.Now(),
	}
	result, err := users.InsertOne(context.Background(), user)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

var errEmailTaken = fmt.Errorf("an account with this email already exists")

func writeUserCreationError(c *gin.Context, err error) {
	if err == errEmailTaken {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user", "details": err.Error()})
}

type ResetPasswordRequest struct {
	UserID      string `json:"userId" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ResetPassword overwrites a staff/partner credential.
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	hashedPassword, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	result, err := h.DB.Collection("users").UpdateOne(context.Background(),
		bson.M{"_id": userID}, bson.M{"$set": bson.M{"password": hashedPassword}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	logrus.WithField("user", req.UserID).Info("password reset by admin")
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Password reset successfully"})
}

// --- Directories ---

// GetStaff lists driver/employee records.
func (h *AdminHandler) GetStaff(c *gin.Context) {
	cursor, err := h.DB.Collection("staff").Find(context.Background(), bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query staff"})
		return
	}
	defer cursor.Close(context.Background())

	var staff []models.Staff
	if err = cursor.All(context.Background(), &staff); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode staff"})
		return
	}
	if staff == nil {
		staff = []models.Staff{}
	}
	c.JSON(http.StatusOK, staff)
}

type UpdateStaffRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Designation string `json:"designation"`
	Status      string `json:"status" binding:"omitempty,oneof=active disabled"`
}

// UpdateStaff edits a staff record; setting status "disabled" also
// disables the linked auth identity.
func (h *AdminHandler) UpdateStaff(c *gin.Context) {
	staffID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid staff id"})
		return
	}

	var req UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Phone != "" {
		update["phone"] = req.Phone
	}
	if req.Designation != "" {
		update["designation"] = req.Designation
	}
	if req.Status != "" {
		update["status"] = req.Status
	}
	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	var staff models.Staff
	err = h.DB.Collection("staff").FindOneAndUpdate(context.Background(),
		bson.M{"_id": staffID}, bson.M{"$set": update}).Decode(&staff)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Staff not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update staff"})
		}
		return
	}

	if req.Status != "" {
		_, err = h.DB.Collection("users").UpdateOne(context.Background(),
			bson.M{"_id": staff.UserID}, bson.M{"$set": bson.M{"status": req.Status}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Staff updated but account status change failed"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff updated successfully"})
}

// GetCustomers lists customer-role accounts with their profiles.
func (h *AdminHandler) GetCustomers(c *gin.Context) {
	h.listAccounts(c, models.RoleUser)
}

// GetSellers lists partner accounts. A seller is a profile carrying a
// business name.
func (h *AdminHandler) GetSellers(c *gin.Context) {
	h.listAccounts(c, models.RoleSeller)
}

func (h *AdminHandler) listAccounts(c *gin.Context, role string) {
	cursor, err := h.DB.Collection("users").Find(context.Background(), bson.M{"role": role},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query accounts"})
		return
	}
	defer cursor.Close(context.Background())

	var users []models.User
	if err = cursor.All(context.Background(), &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode accounts"})
		return
	}

	type accountView struct {
		models.User
		Profile *models.Profile `json:"profile,omitempty"`
	}
	views := make([]accountView, 0, len(users))
	for _, u := range users {
		view := accountView{User: u}
		var profile models.Profile
		err := h.DB.Collection("profiles").FindOne(context.Background(), bson.M{"userID": u.ID}).Decode(&profile)
		if err == nil {
			view.Profile = &profile
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, views)
}

// --- Pricing config (package types) ---

func (h *AdminHandler) GetPricingConfig(c *gin.Context) {
	var cfg models.PricingConfig
	err := h.DB.Collection("pricing_config").FindOne(context.Background(), bson.M{}).Decode(&cfg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusOK, models.PricingConfig{PackageTypes: []string{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pricing config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type UpdatePricingConfigRequest struct {
	PackageTypes []string `json:"packageTypes" binding:"required,min=1,dive,required"`
}

func (h *AdminHandler) UpdatePricingConfig(c *gin.Context) {
	var req UpdatePricingConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.DB.Collection("pricing_config").UpdateOne(context.Background(), bson.M{},
		bson.M{"$set": bson.M{"packageTypes": req.PackageTypes, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update pricing config"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Package types updated successfully"})
}

// --- Shipment management ---

type AssignDriverRequest struct {
	DriverID string `json:"driverId" binding:"required"`
}

// AssignDriver sets the assigned driver on a shipment and notifies the
// driver's socket.
func (h *AdminHandler) AssignDriver(c *gin.Context) {
	awbCode := c.Param("awb")

	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	driverUserID, err := primitive.ObjectIDFromHex(req.DriverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver id"})
		return
	}
	count, err := h.DB.Collection("users").CountDocuments(context.Background(),
		bson.M{"_id": driverUserID, "role": models.RoleDriver, "status": "active"})
	if err != nil || count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Driver not found or not active"})
		return
	}

	result, err := h.DB.Collection("shipments").UpdateOne(context.Background(),
		bson.M{"awb": awbCode},
		bson.M{"$set": bson.M{"driverID": req.DriverID, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign driver"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
		return
	}

	if h.Engine.Hub != nil {
		payload := []byte(fmt.Sprintf(`{"type":"task_assigned","awb":%q}`, awbCode))
		_ = h.Engine.Hub.Send(req.DriverID, payload)
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Driver assigned to shipment " + awbCode})
}

type OverrideStatusRequest struct {
	Status   string `json:"status" binding:"required"`
	Location string `json:"location"`
	Reason   string `json:"reason"`
}

// OverrideStatus is the admin dropdown: any status to any other, no
// adjacency check, but the event pairing still holds.
func (h *AdminHandler) OverrideStatus(c *gin.Context) {
	var req OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shipment, err := h.Engine.Transition(context.Background(), lifecycle.TransitionInput{
		AWB:      c.Param("awb"),
		Next:     req.Status,
		Location: req.Location,
		Reason:   req.Reason,
		Actor:    models.RoleAdmin,
		ActorID:  c.GetString("user_id"),
		Override: true,
	})
	if err != nil {
		transitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "shipment": shipment})
}

// DeleteShipment hard-deletes a cancelled shipment along with its
// events and proof images (including the stored objects).
func (h *AdminHandler) DeleteShipment(c *gin.Context) {
	awbCode := c.Param("awb")

	var shipment models.Shipment
	err := h.DB.Collection("shipments").FindOne(context.Background(), bson.M{"awb": awbCode}).Decode(&shipment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve shipment"})
		}
		return
	}
	if shipment.CurrentStatus != lifecycle.StatusCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "Only cancelled shipments can be deleted"})
		return
	}

	proofCursor, err := h.DB.Collection("delivery_proofs").Find(context.Background(), bson.M{"awb": awbCode})
	if err == nil {
		var proofs []models.DeliveryProof
		if err := proofCursor.All(context.Background(), &proofs); err == nil {
			for _, p := range proofs {
				if h.Uploader != nil && p.ObjectKey != "" {
					if err := h.Uploader.DeleteFile(context.Background(), p.ObjectKey); err != nil {
						logrus.WithError(err).WithField("key", p.ObjectKey).Warn("failed to delete proof object")
					}
				}
			}
		}
	}

	_, _ = h.DB.Collection("delivery_proofs").DeleteMany(context.Background(), bson.M{"awb": awbCode})
	_, _ = h.DB.Collection("tracking_events").DeleteMany(context.Background(), bson.M{"awb": awbCode})
	if _, err := h.DB.Collection("shipments").DeleteOne(context.Background(), bson.M{"awb": awbCode}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete shipment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Shipment " + awbCode + " deleted"})
}

// --- Proof-of-delivery management ---

// UploadProof is the ad-hoc admin POD upload.
func (h *AdminHandler) UploadProof(c *gin.Context) {
	awbCode := c.Param("awb")

	var shipment models.Shipment
	err := h.DB.Collection("shipments").FindOne(context.Background(), bson.M{"awb": awbCode}).Decode(&shipment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve shipment"})
		}
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A photo file is required"})
		return
	}

	url, key, err := uploadProofObject(c.Request.Context(), h.Uploader, awbCode, fileHeader)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo", "details": err.Error()})
		return
	}

	proof := models.DeliveryProof{
		ShipmentID: shipment.ID,
		AWB:        awbCode,
		PhotoURL:   url,
		ObjectKey:  key,
		UploadedBy: c.GetString("user_id"),
		CreatedAt:  time.Now(),
	}
	result, err := h.DB.Collection("delivery_proofs").InsertOne(context.Background(), proof)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record proof"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		proof.ID = oid
	}

	c.JSON(http.StatusCreated, proof)
}

// DeleteProof removes a POD row and its stored object.
func (h *AdminHandler) DeleteProof(c *gin.Context) {
	proofID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proof id"})
		return
	}

	var proof models.DeliveryProof
	err = h.DB.Collection("delivery_proofs").FindOneAndDelete(context.Background(), bson.M{"_id": proofID}).Decode(&proof)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Proof not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete proof"})
		}
		return
	}

	if h.Uploader != nil && proof.ObjectKey != "" {
		if err := h.Uploader.DeleteFile(context.Background(), proof.ObjectKey); err != nil {
			logrus.WithError(err).WithField("key", proof.ObjectKey).Warn("proof row deleted but object removal failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Proof image deleted"})
}
