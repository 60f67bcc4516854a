package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"uex-courier-api-server/internal/models"
	"uex-courier-api-server/internal/socket"
)

var (
	ErrUnknownStatus     = errors.New("unknown status")
	ErrInvalidTransition = errors.New("transition not permitted from current status")
	ErrReasonRequired    = errors.New("a failure reason is required")
	ErrProofRequired     = errors.New("at least one proof-of-delivery photo is required")
	ErrShipmentNotFound  = errors.New("shipment not found")
	ErrNotCancellable    = errors.New("shipment can only be cancelled before pickup")
	ErrStateChanged      = errors.New("shipment changed concurrently, retry the transition")
)

// Engine applies status transitions. The shipment update and the
// tracking event insert run in one mongo transaction so the audit
// trail can never run behind the status.
type Engine struct {
	Client *mongo.Client
	DB     *mongo.Database
	Hub    *socket.Hub
}

func NewEngine(client *mongo.Client, db *mongo.Database, hub *socket.Hub) *Engine {
	return &Engine{Client: client, DB: db, Hub: hub}
}

// TransitionInput describes one requested status change.
type TransitionInput struct {
	AWB      string
	Next     string
	Location string
	Reason   string
	Actor    string // role performing the change: admin, driver, seller, user, system
	ActorID  string
	// Override skips the driver adjacency table and the proof guard.
	// Only the admin manual dropdown sets it.
	Override bool
}

// Transition validates the change against the current shipment state
// and, if permitted, atomically writes the new status plus exactly one
// tracking event. It returns the updated shipment.
func (e *Engine) Transition(ctx context.Context, in TransitionInput) (*models.Shipment, error) {
	next, ok := Normalize(in.Next)
	if !ok {
		return nil, ErrUnknownStatus
	}

	shipments := e.DB.Collection("shipments")

	var shipment models.Shipment
	if err := shipments.FindOne(ctx, bson.M{"awb": in.AWB}).Decode(&shipment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrShipmentNotFound
		}
		return nil, err
	}

	reason := in.Reason
	if next == StatusRTOInitiated && reason == "" {
		reason = DefaultRTOReason
	}

	if !in.Override {
		if next == StatusCancelled {
			if !CanCancel(shipment.CurrentStatus) {
				return nil, ErrNotCancellable
			}
		} else if !DriverCanTransition(shipment.CurrentStatus, next) {
			return nil, ErrInvalidTransition
		}
		if IsFailure(next) && reason == "" {
			return nil, ErrReasonRequired
		}
		if next == StatusDelivered {
			count, err := e.DB.Collection("delivery_proofs").CountDocuments(ctx, bson.M{"awb": in.AWB})
			if err != nil {
				return nil, err
			}
			if count == 0 {
				return nil, ErrProofRequired
			}
		}
	}

	now := time.Now()
	event := models.TrackingEvent{
		ShipmentID: shipment.ID,
		AWB:        shipment.AWB,
		Status:     next,
		Location:   in.Location,
		Reason:     reason,
		Actor:      in.Actor,
		ActorID:    in.ActorID,
		Timestamp:  now,
	}

	update := bson.M{"currentStatus": next, "updatedAt": now}
	if IsFailure(next) || next == StatusRTOInitiated {
		update["failureReason"] = reason
	}

	session, err := e.Client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// The currentStatus precondition makes the adjacency check
		// hold under concurrency: a transition that raced past the
		// read above matches nothing and conflicts instead of
		// committing on stale state.
		res, err := shipments.UpdateOne(sc,
			bson.M{"_id": shipment.ID, "currentStatus": shipment.CurrentStatus},
			bson.M{"$set": update})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ErrStateChanged
		}
		if _, err := e.DB.Collection("tracking_events").InsertOne(sc, event); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	shipment.CurrentStatus = next
	if v, ok := update["failureReason"]; ok {
		shipment.FailureReason = v.(string)
	}
	shipment.UpdatedAt = now

	e.notify(&shipment)

	logrus.WithFields(logrus.Fields{
		"awb":    shipment.AWB,
		"status": next,
		"actor":  in.Actor,
	}).Info("shipment status changed")

	return &shipment, nil
}

// Create inserts a booked shipment together with its order_placed
// sentinel event in one transaction, so a shipment row can never exist
// without the head of its audit trail. A duplicate key error on the
// AWB index passes through for the caller's retry loop.
func (e *Engine) Create(ctx context.Context, shipment *models.Shipment, actor, actorID string) error {
	session, err := e.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := e.DB.Collection("shipments").InsertOne(sc, *shipment)
		if err != nil {
			return nil, err
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			shipment.ID = oid
		}
		event := models.TrackingEvent{
			ShipmentID: shipment.ID,
			AWB:        shipment.AWB,
			Status:     EventOrderPlaced,
			Location:   shipment.Sender.City,
			Actor:      actor,
			ActorID:    actorID,
			Timestamp:  time.Now(),
		}
		if _, err := e.DB.Collection("tracking_events").InsertOne(sc, event); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	e.notify(shipment)
	return nil
}

// notify pushes a change payload to the assigned driver's socket and
// broadcasts to connected admin consoles.
func (e *Engine) notify(shipment *models.Shipment) {
	if e.Hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"type":   "shipment_changed",
		"awb":    shipment.AWB,
		"status": shipment.CurrentStatus,
	})
	if err != nil {
		return
	}
	if shipment.DriverID != "" {
		if err := e.Hub.Send(shipment.DriverID, payload); err != nil {
			logrus.WithError(err).Warn("failed to push update to driver socket")
		}
	}
	e.Hub.Broadcast(models.RoleAdmin, payload)
}
