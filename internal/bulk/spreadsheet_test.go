package bulk

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildSheet(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		for j, cell := range row {
			cellName, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cellName, cell))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestParseSyncSheet(t *testing.T) {
	r := buildSheet(t, [][]interface{}{
		{"awb", "value"},
		{"UEX00000001", "delivered"},
		{"UEX00000002", "in_transit"},
		{"", "ignored"},
	})

	rows, err := ParseSyncSheet(r)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "UEX00000001", rows[0].AWB)
	assert.Equal(t, "delivered", rows[0].Value)
	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, "UEX00000002", rows[1].AWB)
}

func TestParseSyncSheetWithoutHeader(t *testing.T) {
	r := buildSheet(t, [][]interface{}{
		{"UEX00000001", "5.5"},
	})

	rows, err := ParseSyncSheet(r)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Row)
}

func TestParseSyncSheetEmpty(t *testing.T) {
	r := buildSheet(t, [][]interface{}{
		{"awb", "value"},
	})

	_, err := ParseSyncSheet(r)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestAllowedColumnValidation(t *testing.T) {
	t.Run("status values are normalized", func(t *testing.T) {
		col := AllowedColumns["current_status"]
		v, err := col.Parse("manifested")
		require.NoError(t, err)
		assert.Equal(t, "picked_up", v)

		_, err = col.Parse("shipped")
		assert.Error(t, err)
	})

	t.Run("weight must be numeric", func(t *testing.T) {
		col := AllowedColumns["weight"]
		v, err := col.Parse("12.5")
		require.NoError(t, err)
		assert.Equal(t, 12.5, v)

		_, err = col.Parse("heavy")
		assert.Error(t, err)
		_, err = col.Parse("-1")
		assert.Error(t, err)
	})

	t.Run("payment status vocabulary", func(t *testing.T) {
		col := AllowedColumns["payment_status"]
		v, err := col.Parse("Paid")
		require.NoError(t, err)
		assert.Equal(t, "paid", v)

		_, err = col.Parse("maybe")
		assert.Error(t, err)
	})

	t.Run("allow-list is exactly the six sync columns", func(t *testing.T) {
		for _, name := range []string{
			"current_status", "payment_status", "weight",
			"delivery_boy_id", "receiver_phone", "cost",
		} {
			_, ok := AllowedColumns[name]
			assert.True(t, ok, "missing column %s", name)
		}
		assert.Len(t, AllowedColumns, 6)
	})
}

func shipmentHeaderRow() []interface{} {
	return []interface{}{
		"sender_name", "sender_phone", "sender_address", "sender_city", "sender_state", "sender_pincode",
		"receiver_name", "receiver_phone", "receiver_address", "receiver_city", "receiver_state", "receiver_pincode",
		"weight", "package_type", "payment_mode", "cod_amount", "declared_value",
	}
}

func shipmentDataRow(paymentMode string, cod, declared interface{}) []interface{} {
	return []interface{}{
		"Acme Traders", "9000000001", "12 Market Rd", "Mumbai", "MH", "400001",
		"R Kumar", "9000000002", "4 Lake View", "Pune", "MH", "411001",
		2.5, "Parcel", paymentMode, cod, declared,
	}
}

func TestParseShipmentSheet(t *testing.T) {
	r := buildSheet(t, [][]interface{}{
		shipmentHeaderRow(),
		shipmentDataRow("COD", 500, ""),
		shipmentDataRow("Prepaid", "", 1200),
	})

	rows, rowErrs, err := ParseShipmentSheet(r)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 2)

	cod := rows[0]
	assert.Equal(t, "Acme Traders", cod.Sender.Name)
	assert.Equal(t, "R Kumar", cod.Receiver.Name)
	assert.Equal(t, 2.5, cod.WeightKG)
	assert.Equal(t, "COD", cod.PaymentMode)
	assert.Equal(t, 500.0, cod.CODAmount)
	assert.Zero(t, cod.DeclaredValue, "declared value must not survive on a COD row")

	prepaid := rows[1]
	assert.Equal(t, "Prepaid", prepaid.PaymentMode)
	assert.Zero(t, prepaid.CODAmount)
	assert.Equal(t, 1200.0, prepaid.DeclaredValue)
}

func TestParseShipmentSheetRowErrors(t *testing.T) {
	badCOD := shipmentDataRow("COD", "", "")       // COD without amount
	badMode := shipmentDataRow("Collect", 100, "") // unknown payment mode
	badWeight := shipmentDataRow("Prepaid", "", 100)
	badWeight[12] = "heavy"

	r := buildSheet(t, [][]interface{}{
		shipmentHeaderRow(),
		badCOD,
		shipmentDataRow("COD", 250, ""),
		badMode,
		badWeight,
	})

	rows, rowErrs, err := ParseShipmentSheet(r)
	require.NoError(t, err)
	require.Len(t, rows, 1, "one bad row must not sink the batch")
	assert.Equal(t, 250.0, rows[0].CODAmount)

	require.Len(t, rowErrs, 3)
	assert.Equal(t, 2, rowErrs[0].Row)
	assert.Contains(t, rowErrs[0].Err, "cod_amount")
	assert.Equal(t, 4, rowErrs[1].Row)
	assert.Contains(t, rowErrs[1].Err, "payment_mode")
	assert.Equal(t, 5, rowErrs[2].Row)
	assert.Contains(t, rowErrs[2].Err, "weight")
}

func TestParseShipmentSheetPrepaidWithCOD(t *testing.T) {
	r := buildSheet(t, [][]interface{}{
		shipmentHeaderRow(),
		shipmentDataRow("Prepaid", 300, ""),
	})

	rows, rowErrs, err := ParseShipmentSheet(r)
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.Len(t, rowErrs, 1)
	assert.Contains(t, rowErrs[0].Err, "cod_amount must be zero")
}

func TestParseShipmentSheetHeaderOnly(t *testing.T) {
	r := buildSheet(t, [][]interface{}{shipmentHeaderRow()})
	_, _, err := ParseShipmentSheet(r)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestParseSyncSheetRejectsGarbage(t *testing.T) {
	_, err := ParseSyncSheet(bytes.NewReader([]byte("not a spreadsheet")))
	assert.Error(t, err)
	assert.Contains(t, fmt.Sprint(err), "failed to open spreadsheet")
}
