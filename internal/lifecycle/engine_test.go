package lifecycle

import (
	"context"
	"testing"

	"uex-courier-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func shipmentDoc(status string) bson.D {
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "awb", Value: "UEX12345678"},
		{Key: "currentStatus", Value: status},
		{Key: "sender", Value: bson.D{{Key: "city", Value: "Mumbai"}}},
		{Key: "receiver", Value: bson.D{{Key: "city", Value: "Pune"}}},
	}
}

func sampleShipment() *models.Shipment {
	return &models.Shipment{
		AWB:           "UEX12345678",
		Sender:        models.Party{Name: "Acme", City: "Mumbai"},
		Receiver:      models.Party{Name: "R Kumar", City: "Pune"},
		CurrentStatus: StatusCreated,
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	engine := NewEngine(nil, nil, nil)
	_, err := engine.Transition(context.Background(), TransitionInput{
		AWB:  "UEX12345678",
		Next: "lost_in_space",
	})
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestTransition(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("rejects a non-adjacent driver transition", func(mt *mtest.T) {
		engine := NewEngine(mt.Client, mt.Client.Database("uex"), nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "uex.shipments", mtest.FirstBatch, shipmentDoc(StatusCreated)),
		)

		_, err := engine.Transition(context.Background(), TransitionInput{
			AWB:      "UEX12345678",
			Next:     StatusDelivered,
			Location: "Pune hub",
			Actor:    models.RoleDriver,
		})
		assert.ErrorIs(mt.T, err, ErrInvalidTransition)
	})

	mt.Run("requires a reason on failure statuses", func(mt *mtest.T) {
		engine := NewEngine(mt.Client, mt.Client.Database("uex"), nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "uex.shipments", mtest.FirstBatch, shipmentDoc(StatusOutForDelivery)),
		)

		_, err := engine.Transition(context.Background(), TransitionInput{
			AWB:      "UEX12345678",
			Next:     StatusUndelivered,
			Location: "Pune hub",
			Actor:    models.RoleDriver,
		})
		assert.ErrorIs(mt.T, err, ErrReasonRequired)
	})

	mt.Run("rejects delivery without proof photos", func(mt *mtest.T) {
		engine := NewEngine(mt.Client, mt.Client.Database("uex"), nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "uex.shipments", mtest.FirstBatch, shipmentDoc(StatusOutForDelivery)),
			// empty count cursor: zero proof rows
			mtest.CreateCursorResponse(0, "uex.delivery_proofs", mtest.FirstBatch),
		)

		_, err := engine.Transition(context.Background(), TransitionInput{
			AWB:      "UEX12345678",
			Next:     StatusDelivered,
			Location: "Doorstep",
			Actor:    models.RoleDriver,
		})
		assert.ErrorIs(mt.T, err, ErrProofRequired)
	})

	mt.Run("cancels only from created", func(mt *mtest.T) {
		engine := NewEngine(mt.Client, mt.Client.Database("uex"), nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "uex.shipments", mtest.FirstBatch, shipmentDoc(StatusPickedUp)),
		)

		_, err := engine.Transition(context.Background(), TransitionInput{
			AWB:   "UEX12345678",
			Next:  StatusCancelled,
			Actor: models.RoleUser,
		})
		assert.ErrorIs(mt.T, err, ErrNotCancellable)
	})

	mt.Run("commits delivery once a proof photo exists", func(mt *mtest.T) {
		engine := NewEngine(mt.Client, mt.Client.Database("uex"), nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "uex.shipments", mtest.FirstBatch, shipmentDoc(StatusOutForDelivery)),
			mtest.CreateCursorResponse(0, "uex.delivery_proofs", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}), // shipment update
			mtest.CreateSuccessResponse(), // event insert
			mtest.CreateSuccessResponse(), // commitTransaction
		)

		shipment, err := engine.Transition(context.Background(), TransitionInput{
			AWB:      "UEX12345678",
			Next:     StatusDelivered,
			Location: "Doorstep",
			Actor:    models.RoleDriver,
			ActorID:  "driver-1",
		})
		require.NoError(mt.T, err)
		assert.Equal(mt.T, StatusDelivered, shipment.CurrentStatus)
	})

	mt.Run("fills the default reason on RTO", func(mt *mtest.T) {
		engine := NewEngine(mt.Client, mt.Client.Database("uex"), nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "uex.shipments", mtest.FirstBatch, shipmentDoc(StatusUndelivered)),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(), // event insert
			mtest.CreateSuccessResponse(), // commitTransaction
		)

		shipment, err := engine.Transition(context.Background(), TransitionInput{
			AWB:   "UEX12345678",
			Next:  StatusRTOInitiated,
			Actor: models.RoleDriver,
		})
		require.NoError(mt.T, err)
		assert.Equal(mt.T, StatusRTOInitiated, shipment.CurrentStatus)
		assert.Equal(mt.T, DefaultRTOReason, shipment.FailureReason)
	})

	mt.Run("conflicts when the status moved underneath", func(mt *mtest.T) {
		engine := NewEngine(mt.Client, mt.Client.Database("uex"), nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "uex.shipments", mtest.FirstBatch, shipmentDoc(StatusCreated)),
			// another transition committed between read and write: the
			// currentStatus precondition matches nothing
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateSuccessResponse(), // abortTransaction
		)

		_, err := engine.Transition(context.Background(), TransitionInput{
			AWB:      "UEX12345678",
			Next:     StatusPickedUp,
			Location: "Mumbai hub",
			Actor:    models.RoleDriver,
		})
		assert.ErrorIs(mt.T, err, ErrStateChanged)
	})

	mt.Run("shipment not found", func(mt *mtest.T) {
		engine := NewEngine(mt.Client, mt.Client.Database("uex"), nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "uex.shipments", mtest.FirstBatch),
		)

		_, err := engine.Transition(context.Background(), TransitionInput{
			AWB:   "UEX00000000",
			Next:  StatusPickedUp,
			Actor: models.RoleDriver,
		})
		assert.ErrorIs(mt.T, err, ErrShipmentNotFound)
	})
}

func TestCreate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("writes the shipment and its sentinel event together", func(mt *mtest.T) {
		engine := NewEngine(mt.Client, mt.Client.Database("uex"), nil)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(), // shipment insert
			mtest.CreateSuccessResponse(), // order_placed event insert
			mtest.CreateSuccessResponse(), // commitTransaction
		)

		err := engine.Create(context.Background(), sampleShipment(), models.RoleUser, "user-1")
		assert.NoError(mt.T, err)
	})

	mt.Run("fails as a unit when the sentinel insert fails", func(mt *mtest.T) {
		engine := NewEngine(mt.Client, mt.Client.Database("uex"), nil)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(), // shipment insert
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    11601,
				Message: "operation was interrupted",
				Name:    "Interrupted",
			}),
			mtest.CreateSuccessResponse(), // abortTransaction
		)

		err := engine.Create(context.Background(), sampleShipment(), models.RoleUser, "user-1")
		assert.Error(mt.T, err)
	})
}
