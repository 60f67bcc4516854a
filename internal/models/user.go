package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application roles. Every account maps to exactly one.
const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
	RoleDriver = "driver"
	RoleUser   = "user"
)

// User is an auth identity. Password is a bcrypt hash.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name" json:"name"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	Status    string             `bson:"status" json:"status"` // "active" or "disabled"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Profile holds contact/business info for an account. A profile with a
// non-empty business name is what marks an account as a seller in the
// admin directory.
type Profile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userID" json:"userID"`
	Phone        string             `bson:"phone" json:"phone"`
	Address      string             `bson:"address" json:"address"`
	City         string             `bson:"city" json:"city"`
	State        string             `bson:"state" json:"state"`
	Pincode      string             `bson:"pincode" json:"pincode"`
	BusinessName string             `bson:"businessName,omitempty" json:"businessName,omitempty"`
	GSTNumber    string             `bson:"gstNumber,omitempty" json:"gstNumber,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Staff links a driver/employee display record to an auth identity.
// Shipment.DriverID references the auth identity (UserID hex), which
// is also the socket hub key.
type Staff struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userID" json:"userID"`
	Name        string             `bson:"name" json:"name"`
	Phone       string             `bson:"phone" json:"phone"`
	Designation string             `bson:"designation" json:"designation"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
