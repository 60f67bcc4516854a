package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"uex-courier-api-server/internal/models"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// Label renders the fixed-layout 4x6 inch shipping label: receiver
// block, sender block, COD banner and a Code 128 barcode of the AWB.
// trackingBaseURL, when set, adds a QR pointing at the public tracking
// page.
func Label(shipment *models.Shipment, trackingBaseURL string) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "in",
		Size:           gofpdf.SizeType{Wd: 4, Ht: 6},
	})
	pdf.SetMargins(0.2, 0.2, 0.2)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 0.3, "UNITED EXPRESS", "", 1, "C", false, 0, "")
	pdf.SetLineWidth(0.01)
	pdf.Line(0.2, 0.55, 3.8, 0.55)

	// Barcode of the AWB
	bc, err := code128.Encode(shipment.AWB)
	if err != nil {
		return nil, fmt.Errorf("failed to encode barcode: %w", err)
	}
	scaled, err := barcode.Scale(bc, 600, 120)
	if err != nil {
		return nil, fmt.Errorf("failed to scale barcode: %w", err)
	}
	// The barcode image reports a 16-bit color model, which gofpdf's
	// PNG reader rejects; redraw it at 8-bit depth before encoding.
	gray := image.NewGray(scaled.Bounds())
	draw.Draw(gray, gray.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
	var bcBuf bytes.Buffer
	if err := png.Encode(&bcBuf, gray); err != nil {
		return nil, err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("awb-barcode", opts, &bcBuf)
	pdf.ImageOptions("awb-barcode", 0.4, 0.7, 3.2, 0.65, false, opts, 0, "")

	pdf.SetY(1.4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 0.25, shipment.AWB, "", 1, "C", false, 0, "")

	// COD banner
	pdf.SetY(1.75)
	pdf.SetFont("Helvetica", "B", 13)
	if shipment.PaymentMode == models.PaymentModeCOD {
		pdf.SetFillColor(0, 0, 0)
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(0, 0.3, fmt.Sprintf("COD - COLLECT %.2f", shipment.CODAmount), "", 1, "C", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
	} else {
		pdf.CellFormat(0, 0.3, "PREPAID", "1", 1, "C", false, 0, "")
	}

	// Receiver block
	pdf.SetY(2.2)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(0, 0.2, "DELIVER TO:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 0.22, shipment.Receiver.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(3.6, 0.18, shipment.Receiver.Address, "", "L", false)
	pdf.CellFormat(0, 0.18, fmt.Sprintf("%s, %s - %s", shipment.Receiver.City, shipment.Receiver.State, shipment.Receiver.Pincode), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 0.18, "Phone: "+shipment.Receiver.Phone, "", 1, "L", false, 0, "")

	// Sender block
	pdf.SetY(3.9)
	pdf.Line(0.2, 3.85, 3.8, 3.85)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(0, 0.18, "FROM:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 0.16, shipment.Sender.Name, "", 1, "L", false, 0, "")
	pdf.MultiCell(2.4, 0.14, shipment.Sender.Address, "", "L", false)
	pdf.CellFormat(0, 0.16, fmt.Sprintf("%s, %s - %s", shipment.Sender.City, shipment.Sender.State, shipment.Sender.Pincode), "", 1, "L", false, 0, "")

	// Package details
	pdf.SetY(4.9)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(1.8, 0.16, fmt.Sprintf("Weight: %.2f kg", shipment.WeightKG), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 0.16, "Type: "+shipment.PackageType, "", 1, "L", false, 0, "")

	// Tracking QR bottom-right
	if trackingBaseURL != "" {
		url := strings.TrimRight(trackingBaseURL, "/") + "/track/" + shipment.AWB
		qrPNG, err := qrcode.Encode(url, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tracking QR: %w", err)
		}
		pdf.RegisterImageOptionsReader("tracking-qr", opts, bytes.NewReader(qrPNG))
		pdf.ImageOptions("tracking-qr", 2.9, 4.7, 0.9, 0.9, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
