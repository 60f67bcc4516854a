package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment modes. CODAmount and DeclaredValue are mutually exclusive:
// a COD shipment carries a collectable amount, a Prepaid one a declared value.
const (
	PaymentModePrepaid = "Prepaid"
	PaymentModeCOD     = "COD"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Party holds one side of a shipment (sender or receiver).
type Party struct {
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone" json:"phone"`
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Pincode string `bson:"pincode" json:"pincode"`
}

type Shipment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AWB           string             `bson:"awb" json:"awb"` // unique, immutable once assigned
	Sender        Party              `bson:"sender" json:"sender"`
	Receiver      Party              `bson:"receiver" json:"receiver"`
	WeightKG      float64            `bson:"weightKG" json:"weightKG"`
	PackageType   string             `bson:"packageType" json:"packageType"`
	PaymentMode   string             `bson:"paymentMode" json:"paymentMode"`
	CODAmount     float64            `bson:"codAmount" json:"codAmount"`
	DeclaredValue float64            `bson:"declaredValue" json:"declaredValue"`
	PaymentStatus string             `bson:"paymentStatus" json:"paymentStatus"`
	CurrentStatus string             `bson:"currentStatus" json:"currentStatus"`
	FailureReason string             `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	DriverID      string             `bson:"driverID,omitempty" json:"driverID,omitempty"`

	// Pricing fields are carried on the document but no rating engine
	// writes them yet, so they stay zero.
	Cost      float64 `bson:"cost" json:"cost"`
	BaseFee   float64 `bson:"baseFee" json:"baseFee"`
	TaxAmount float64 `bson:"taxAmount" json:"taxAmount"`

	CreatedBy string    `bson:"createdBy" json:"createdBy"` // user ID of the booking account
	Origin    string    `bson:"origin" json:"origin"`       // "customer", "seller" or "admin"
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
