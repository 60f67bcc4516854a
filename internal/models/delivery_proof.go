package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliveryProof is one proof-of-delivery photo attached to a shipment.
type DeliveryProof struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ShipmentID primitive.ObjectID `bson:"shipmentID" json:"shipmentID"`
	AWB        string             `bson:"awb" json:"awb"`
	PhotoURL   string             `bson:"photoURL" json:"photoURL"`
	ObjectKey  string             `bson:"objectKey" json:"objectKey"` // S3 key, needed for deletion
	UploadedBy string             `bson:"uploadedBy" json:"uploadedBy"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
