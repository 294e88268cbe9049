package receipt

import (
	"bytes"
	"fmt"

	"kartbook/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Info carries what the receipt needs beyond the booking itself. KartNames
// maps kart id to display name.
type Info struct {
	BusinessName  string
	BusinessEmail string
	KartNames     map[string]string
}

// QRPayload is the string encoded in the receipt's QR code.
func QRPayload(b *models.Booking) string {
	return fmt.Sprintf("kartbook|%s|%s|%s", b.ID, b.Date, b.StartTime)
}

// Render produces a one-page PDF receipt for b.
func Render(b *models.Booking, info Info) ([]byte, error) {
	qrPNG, err := qrcode.Encode(QRPayload(b), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking "+b.ID, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, info.BusinessName)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, info.BusinessEmail)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Booking Receipt")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 12)
	lines := []string{
		"Booking: " + b.ID,
		"Name: " + b.CustomerName,
		"Email: " + b.CustomerEmail,
		"Phone: " + b.CustomerPhone,
		"Date: " + b.Date,
		fmt.Sprintf("Time: %s - %s (%d min)", b.StartTime, b.EndTime, b.Duration),
		"Status: " + b.Status,
	}
	for _, l := range lines {
		pdf.Cell(0, 8, l)
		pdf.Ln(7)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(40, 8, "Timeslot", "1", 0, "", false, 0, "")
	pdf.CellFormat(70, 8, "Kart", "1", 0, "", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Subtotal", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, sel := range b.KartSelections {
		slot := "all"
		if sel.Timeslot != nil {
			slot = sel.Timeslot.String()
		}
		name := info.KartNames[sel.Kart]
		if name == "" {
			name = sel.Kart
		}
		pdf.CellFormat(40, 8, slot, "1", 0, "", false, 0, "")
		pdf.CellFormat(70, 8, name, "1", 0, "", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprint(sel.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, sel.PricePerSlot.StringFixed(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, sel.PricePerSlot.Times(sel.Quantity).StringFixed(), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(160, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, b.TotalPrice.StringFixed(), "1", 1, "R", false, 0, "")

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return buf.Bytes(), nil
}
