package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// APIKey is the one secret token a seller account uses as a bearer
// credential on the external integration API. Regeneration overwrites
// the existing row (upsert).
type APIKey struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userID" json:"userID"`
	Key       string             `bson:"key" json:"key"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PricingConfig holds the admin-editable list of allowed package types.
// The same list backs the package type dropdown of every booking form.
type PricingConfig struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PackageTypes []string           `bson:"packageTypes" json:"packageTypes"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
