// Package lifecycle is the single authority for shipment status
// transitions. Every status change in the system, whatever surface it
// comes from (driver app, admin console, bulk sync, seller cancel),
// goes through Engine.Transition so the shipment document and its
// tracking event trail can never drift apart.
package lifecycle

// Canonical status vocabulary. Older clients used "manifested" and
// "rto" for the same states; Normalize maps those in.
const (
	StatusCreated        = "created"
	StatusPickedUp       = "picked_up"
	StatusInTransit      = "in_transit"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusUndelivered    = "undelivered"
	StatusPickupFailed   = "pickup_failed"
	StatusDeliveryFailed = "delivery_failed"
	StatusRTOInitiated   = "rto_initiated"
	StatusRTODelivered   = "rto_delivered"
	StatusCancelled      = "cancelled"
)

// EventOrderPlaced is the sentinel status of the first tracking event,
// written when a shipment is booked.
const EventOrderPlaced = "order_placed"

// DefaultRTOReason is auto-filled when an RTO transition arrives
// without an explicit reason.
const DefaultRTOReason = "Maximum delivery attempts exceeded"

var aliases = map[string]string{
	"manifested": StatusPickedUp,
	"rto":        StatusRTOInitiated,
}

var allStatuses = map[string]bool{
	StatusCreated:        true,
	StatusPickedUp:       true,
	StatusInTransit:      true,
	StatusOutForDelivery: true,
	StatusDelivered:      true,
	StatusUndelivered:    true,
	StatusPickupFailed:   true,
	StatusDeliveryFailed: true,
	StatusRTOInitiated:   true,
	StatusRTODelivered:   true,
	StatusCancelled:      true,
}

// Normalize maps legacy synonyms onto the canonical vocabulary.
// The second return is false for a status outside the vocabulary.
func Normalize(s string) (string, bool) {
	if canonical, ok := aliases[s]; ok {
		return canonical, true
	}
	if allStatuses[s] {
		return s, true
	}
	return s, false
}

// IsFailure reports whether s is one of the failed-attempt statuses
// that require a reason from the driver.
func IsFailure(s string) bool {
	return s == StatusUndelivered || s == StatusPickupFailed || s == StatusDeliveryFailed
}

// IsTerminal reports whether no further driver action applies.
func IsTerminal(s string) bool {
	return s == StatusDelivered || s == StatusRTODelivered || s == StatusCancelled
}

// driverNext lists the transitions a driver (or the system acting for
// one) may take. Admins bypass this table entirely.
var driverNext = map[string][]string{
	StatusCreated:        {StatusPickedUp, StatusInTransit, StatusPickupFailed},
	StatusPickedUp:       {StatusInTransit, StatusOutForDelivery, StatusPickupFailed},
	StatusInTransit:      {StatusInTransit, StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered, StatusUndelivered, StatusDeliveryFailed},
	StatusUndelivered:    {StatusOutForDelivery, StatusRTOInitiated},
	StatusDeliveryFailed: {StatusOutForDelivery, StatusRTOInitiated},
	StatusPickupFailed:   {StatusPickedUp, StatusRTOInitiated},
	StatusRTOInitiated:   {StatusRTODelivered},
}

// DriverCanTransition reports whether from -> to is a permitted driver
// transition. Repeated in_transit entries are allowed so location
// updates keep appending events.
func DriverCanTransition(from, to string) bool {
	for _, next := range driverNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanCancel implements the seller/customer cancel rule: only before
// pickup.
func CanCancel(current string) bool {
	return current == StatusCreated
}
