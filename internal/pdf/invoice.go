// Package pdf renders the shipment documents: the tax invoice and the
// 4x6 shipping label. Both are pure functions of their inputs; the
// handlers stream the bytes straight to the response.
package pdf

import (
	"bytes"
	"fmt"

	"uex-courier-api-server/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// Invoice renders a tax-invoice-styled A4 PDF for one shipment. The
// seller profile is optional; when present, its business details head
// the document. COD shipments show the amount to collect, Prepaid
// ones the declared value.
func Invoice(shipment *models.Shipment, seller *models.Profile) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "TAX INVOICE", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 12)
	if seller != nil && seller.BusinessName != "" {
		pdf.CellFormat(0, 7, seller.BusinessName, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 5, fmt.Sprintf("%s, %s, %s - %s", seller.Address, seller.City, seller.State, seller.Pincode), "", 1, "L", false, 0, "")
		if seller.GSTNumber != "" {
			pdf.CellFormat(0, 5, "GSTIN: "+seller.GSTNumber, "", 1, "L", false, 0, "")
		}
	} else {
		pdf.CellFormat(0, 7, "United Express Courier", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(95, 6, "Invoice No: INV-"+shipment.AWB, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+shipment.CreatedAt.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 6, "AWB: "+shipment.AWB, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Bill-to / ship-to blocks
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(95, 6, "Sender", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Receiver", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	writeParty := func(p models.Party) []string {
		return []string{
			p.Name,
			p.Address,
			fmt.Sprintf("%s, %s - %s", p.City, p.State, p.Pincode),
			"Phone: " + p.Phone,
		}
	}
	senderLines := writeParty(shipment.Sender)
	receiverLines := writeParty(shipment.Receiver)
	for i := range senderLines {
		pdf.CellFormat(95, 5, senderLines[i], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, receiverLines[i], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Line item table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(70, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Weight (kg)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Payment Mode", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	amountLabel := "Declared Value"
	amount := shipment.DeclaredValue
	if shipment.PaymentMode == models.PaymentModeCOD {
		amountLabel = "Amount to Collect"
		amount = shipment.CODAmount
	}
	pdf.CellFormat(70, 7, "Courier service - "+shipment.PackageType, "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", shipment.WeightKG), "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 7, shipment.PaymentMode, "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", amount), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(140, 7, amountLabel, "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", amount), "1", 1, "R", false, 0, "")

	if shipment.Cost > 0 || shipment.TaxAmount > 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(140, 7, "Shipping Charges", "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", shipment.Cost), "1", 1, "R", false, 0, "")
		pdf.CellFormat(140, 7, "Tax", "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", shipment.TaxAmount), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "This is a computer generated invoice and does not require a signature.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
