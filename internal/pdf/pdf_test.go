package pdf

import (
	"testing"
	"time"

	"uex-courier-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleShipment(paymentMode string) *models.Shipment {
	s := &models.Shipment{
		AWB: "UEX12345678",
		Sender: models.Party{
			Name: "Acme Traders", Phone: "9000000001",
			Address: "12 Market Rd", City: "Mumbai", State: "MH", Pincode: "400001",
		},
		Receiver: models.Party{
			Name: "R Kumar", Phone: "9000000002",
			Address: "4 Lake View", City: "Pune", State: "MH", Pincode: "411001",
		},
		WeightKG:    2.5,
		PackageType: "Parcel",
		PaymentMode: paymentMode,
		CreatedAt:   time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	if paymentMode == models.PaymentModeCOD {
		s.CODAmount = 500
	} else {
		s.DeclaredValue = 1200
	}
	return s
}

func TestInvoiceRenders(t *testing.T) {
	for _, mode := range []string{models.PaymentModeCOD, models.PaymentModePrepaid} {
		data, err := Invoice(sampleShipment(mode), nil)
		require.NoError(t, err, "mode %s", mode)
		require.NotEmpty(t, data)
		assert.Equal(t, "%PDF", string(data[:4]))
	}
}

func TestInvoiceWithSellerProfile(t *testing.T) {
	seller := &models.Profile{
		BusinessName: "Acme Traders Pvt Ltd",
		GSTNumber:    "27AAACA1234A1Z5",
		Address:      "12 Market Rd",
		City:         "Mumbai",
		State:        "MH",
		Pincode:      "400001",
	}
	data, err := Invoice(sampleShipment(models.PaymentModeCOD), seller)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestLabelRenders(t *testing.T) {
	data, err := Label(sampleShipment(models.PaymentModeCOD), "https://ship.uex.example.com")
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestLabelWithoutTrackingURL(t *testing.T) {
	data, err := Label(sampleShipment(models.PaymentModePrepaid), "")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}
