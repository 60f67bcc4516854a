package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"uex-courier-api-server/internal/awb"
	"uex-courier-api-server/internal/lifecycle"
	"uex-courier-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// --- Shared request structs ---

type PartyRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required"`
}

type CreateShipmentRequest struct {
	Sender        PartyRequest `json:"sender" binding:"required"`
	Receiver      PartyRequest `json:"receiver" binding:"required"`
	WeightKG      float64      `json:"weightKG" binding:"required,gt=0"`
	PackageType   string       `json:"packageType" binding:"required"`
	PaymentMode   string       `json:"paymentMode" binding:"required,oneof=Prepaid COD"`
	CODAmount     float64      `json:"codAmount" binding:"omitempty,gte=0"`
	DeclaredValue float64      `json:"declaredValue" binding:"omitempty,gte=0"`
}

func (r *PartyRequest) toModel() models.Party {
	return models.Party{
		Name:    r.Name,
		Phone:   r.Phone,
		Address: r.Address,
		City:    r.City,
		State:   r.State,
		Pincode: r.Pincode,
	}
}

var (
	errCODAmountRequired = errors.New("codAmount must be positive for COD shipments")
	errCODAmountForbidden = errors.New("codAmount must be zero for Prepaid shipments")
	errUnknownPackageType = errors.New("packageType is not in the configured list")
)

// bookingOrigin maps the caller's role onto the shipment origin.
// Seller bookings get the professional AWB format regardless of which
// booking surface they arrive through.
func bookingOrigin(role string) string {
	switch role {
	case models.RoleAdmin:
		return "admin"
	case models.RoleSeller:
		return "seller"
	default:
		return "customer"
	}
}

// validatePayment enforces the COD/Prepaid exclusivity at the server.
func validatePayment(mode string, codAmount float64) error {
	if mode == models.PaymentModeCOD && codAmount <= 0 {
		return errCODAmountRequired
	}
	if mode == models.PaymentModePrepaid && codAmount > 0 {
		return errCODAmountForbidden
	}
	return nil
}

// Booker holds what every booking surface (customer form, seller API,
// admin console, bulk upload) needs to create a shipment.
type Booker struct {
	DB     *mongo.Database
	Engine *lifecycle.Engine
}

// packageTypeAllowed checks the requested type against the
// admin-managed pricing config list.
func (b *Booker) packageTypeAllowed(ctx context.Context, packageType string) (bool, error) {
	var cfg models.PricingConfig
	err := b.DB.Collection("pricing_config").FindOne(ctx, bson.M{}).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// No config seeded yet; accept anything rather than block bookings.
		return true, nil
	}
	if err != nil {
		return false, err
	}
	for _, t := range cfg.PackageTypes {
		if t == packageType {
			return true, nil
		}
	}
	return false, nil
}

// Book validates and inserts a shipment, generates its AWB (retrying
// on a duplicate key), and records the order_placed sentinel event.
func (b *Booker) Book(ctx context.Context, req *CreateShipmentRequest, createdBy, origin, actorRole string) (*models.Shipment, error) {
	if err := validatePayment(req.PaymentMode, req.CODAmount); err != nil {
		return nil, err
	}
	ok, err := b.packageTypeAllowed(ctx, req.PackageType)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errUnknownPackageType
	}

	declared := req.DeclaredValue
	if req.PaymentMode == models.PaymentModeCOD {
		declared = 0
	}

	now := time.Now()
	shipment := models.Shipment{
		Sender:        req.Sender.toModel(),
		Receiver:      req.Receiver.toModel(),
		WeightKG:      req.WeightKG,
		PackageType:   req.PackageType,
		PaymentMode:   req.PaymentMode,
		CODAmount:     req.CODAmount,
		DeclaredValue: declared,
		PaymentStatus: models.PaymentStatusPending,
		CurrentStatus: lifecycle.StatusCreated,
		CreatedBy:     createdBy,
		Origin:        origin,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The unique index on awb turns a generator collision into a
	// duplicate key error; three attempts is already astronomical. The
	// engine inserts the shipment and its order_placed sentinel in one
	// transaction.
	for attempt := 0; attempt < 3; attempt++ {
		if origin == "seller" {
			shipment.AWB = awb.NewProfessional(now)
		} else {
			shipment.AWB = awb.New()
		}
		if err := b.Engine.Create(ctx, &shipment, actorRole, createdBy); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return nil, err
		}
		return &shipment, nil
	}
	return nil, errors.New("failed to allocate a unique AWB")
}

// transitionError maps lifecycle sentinel errors onto HTTP responses.
func transitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrShipmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
	case errors.Is(err, lifecycle.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status value"})
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrNotCancellable),
		errors.Is(err, lifecycle.ErrStateChanged):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrReasonRequired),
		errors.Is(err, lifecycle.ErrProofRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status", "details": err.Error()})
	}
}
