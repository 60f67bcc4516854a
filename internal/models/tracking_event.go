package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrackingEvent is one append-only row of a shipment's audit trail.
// Rows are never updated or deleted; display order is timestamp descending.
type TrackingEvent struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ShipmentID primitive.ObjectID `bson:"shipmentID" json:"shipmentID"`
	AWB        string             `bson:"awb" json:"awb"`
	Status     string             `bson:"status" json:"status"`
	Location   string             `bson:"location" json:"location"`
	Reason     string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Actor      string             `bson:"actor" json:"actor"` // role that caused the transition
	ActorID    string             `bson:"actorID,omitempty" json:"actorID,omitempty"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}
