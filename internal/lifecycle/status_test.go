package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"created", StatusCreated, true},
		{"picked_up", StatusPickedUp, true},
		{"manifested", StatusPickedUp, true}, // legacy synonym
		{"rto", StatusRTOInitiated, true},    // legacy synonym
		{"rto_initiated", StatusRTOInitiated, true},
		{"rto_delivered", StatusRTODelivered, true},
		{"delivered", StatusDelivered, true},
		{"cancelled", StatusCancelled, true},
		{"order_placed", "order_placed", false}, // sentinel, not a shipment status
		{"shipped", "shipped", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Normalize(tt.in)
		assert.Equal(t, tt.ok, ok, "Normalize(%q) ok", tt.in)
		if ok {
			assert.Equal(t, tt.want, got, "Normalize(%q)", tt.in)
		}
	}
}

func TestDriverCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{StatusCreated, StatusPickedUp},
		{StatusCreated, StatusInTransit},
		{StatusCreated, StatusPickupFailed},
		{StatusPickedUp, StatusInTransit},
		{StatusPickedUp, StatusOutForDelivery},
		{StatusInTransit, StatusInTransit}, // repeated location updates
		{StatusInTransit, StatusOutForDelivery},
		{StatusOutForDelivery, StatusDelivered},
		{StatusOutForDelivery, StatusUndelivered},
		{StatusOutForDelivery, StatusDeliveryFailed},
		{StatusUndelivered, StatusOutForDelivery}, // reattempt
		{StatusUndelivered, StatusRTOInitiated},
		{StatusRTOInitiated, StatusRTODelivered},
	}
	for _, tt := range allowed {
		assert.True(t, DriverCanTransition(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	denied := []struct{ from, to string }{
		{StatusCreated, StatusDelivered},
		{StatusCreated, StatusOutForDelivery},
		{StatusPickedUp, StatusDelivered},
		{StatusDelivered, StatusInTransit},
		{StatusDelivered, StatusDelivered},
		{StatusCancelled, StatusPickedUp},
		{StatusRTODelivered, StatusOutForDelivery},
		{StatusOutForDelivery, StatusPickupFailed},
	}
	for _, tt := range denied {
		assert.False(t, DriverCanTransition(tt.from, tt.to), "%s -> %s should be denied", tt.from, tt.to)
	}
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(StatusCreated))

	for _, status := range []string{
		StatusPickedUp, StatusInTransit, StatusOutForDelivery,
		StatusDelivered, StatusUndelivered, StatusRTOInitiated, StatusCancelled,
	} {
		assert.False(t, CanCancel(status), "cancel from %s must be rejected", status)
	}
}

func TestIsFailure(t *testing.T) {
	assert.True(t, IsFailure(StatusUndelivered))
	assert.True(t, IsFailure(StatusPickupFailed))
	assert.True(t, IsFailure(StatusDeliveryFailed))
	assert.False(t, IsFailure(StatusDelivered))
	assert.False(t, IsFailure(StatusRTOInitiated))
	assert.False(t, IsFailure(StatusCancelled))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusDelivered))
	assert.True(t, IsTerminal(StatusRTODelivered))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.False(t, IsTerminal(StatusCreated))
	assert.False(t, IsTerminal(StatusUndelivered))
}
