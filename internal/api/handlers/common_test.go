package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"uex-courier-api-server/internal/lifecycle"
	"uex-courier-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestValidatePayment(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		codAmount float64
		wantErr   error
	}{
		{"cod with amount", models.PaymentModeCOD, 500, nil},
		{"cod without amount", models.PaymentModeCOD, 0, errCODAmountRequired},
		{"prepaid without amount", models.PaymentModePrepaid, 0, nil},
		{"prepaid with amount", models.PaymentModePrepaid, 250, errCODAmountForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePayment(tc.mode, tc.codAmount)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestBookingOrigin(t *testing.T) {
	assert.Equal(t, "admin", bookingOrigin(models.RoleAdmin))
	assert.Equal(t, "seller", bookingOrigin(models.RoleSeller))
	assert.Equal(t, "customer", bookingOrigin(models.RoleUser))
	assert.Equal(t, "customer", bookingOrigin(""))
}

func TestTransitionErrorStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"missing shipment", lifecycle.ErrShipmentNotFound, http.StatusNotFound},
		{"unknown status", lifecycle.ErrUnknownStatus, http.StatusBadRequest},
		{"invalid transition", lifecycle.ErrInvalidTransition, http.StatusConflict},
		{"not cancellable", lifecycle.ErrNotCancellable, http.StatusConflict},
		{"concurrent modification", lifecycle.ErrStateChanged, http.StatusConflict},
		{"reason required", lifecycle.ErrReasonRequired, http.StatusBadRequest},
		{"proof required", lifecycle.ErrProofRequired, http.StatusBadRequest},
		{"unexpected error", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			transitionError(c, tc.err)
			assert.Equal(t, tc.wantCode, w.Code)
		})
	}
}
