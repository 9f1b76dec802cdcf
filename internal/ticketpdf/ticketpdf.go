// Package ticketpdf renders ticket QR codes and printable PDF tickets.
package ticketpdf

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	fontFamily    = "ticket"
	dateLayout    = "02.01.2006 15:04"
)

type Config struct {
	// FontPath is an optional UTF-8 TTF; without it Helvetica (cp1252) is used
	FontPath string
	QRSize   int
	Currency string
}

// Renderer is safe for concurrent use; every PDF gets its own document
type Renderer struct {
	qrSize   int
	currency string
	font     []byte
}

func New(cfg Config) (*Renderer, error) {
	r := &Renderer{qrSize: cfg.QRSize, currency: cfg.Currency}
	if r.qrSize <= 0 {
		r.qrSize = defaultQRSize
	}
	if r.currency == "" {
		r.currency = domain.DefaultCurrency
	}
	if cfg.FontPath != "" {
		font, err := os.ReadFile(cfg.FontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read pdf font: %w", err)
		}
		r.font = font
	}
	return r, nil
}

// QRCode encodes payload as a PNG image
func (r *Renderer) QRCode(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, r.qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}

// TicketPDF renders one A5 ticket
func (r *Renderer) TicketPDF(t *domain.TicketDetails) ([]byte, error) {
	qr, err := r.QRCode(t.QRPayload())
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	tr := func(s string) string { return s }
	if r.font != nil {
		pdf.AddUTF8FontFromBytes(fontFamily, "", r.font)
		pdf.AddUTF8FontFromBytes(fontFamily, "B", r.font)
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	setFont := func(style string, size float64) {
		if r.font != nil {
			pdf.SetFont(fontFamily, style, size)
			return
		}
		pdf.SetFont("Helvetica", style, size)
	}

	pdf.SetTitle("Ticket "+t.ID, true)
	pdf.AddPage()

	setFont("B", 16)
	pdf.MultiCell(0, 8, tr(t.EventTitle), "", "L", false)
	setFont("", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, tr(t.CategoryName), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(3)

	rows := [][2]string{
		{"Date", t.StartsAt.Format(dateLayout)},
		{"Duration", strconv.Itoa(t.DurationMinutes) + " min"},
		{"Location", t.Location},
		{"Ticket", t.ID},
		{"Order", t.OrderID},
		{"Buyer", t.BuyerName},
		{"Tariff", t.TariffName},
		{"Price", t.Price.StringFixed(2) + " " + r.currency},
	}
	for _, row := range rows {
		setFont("B", 10)
		pdf.CellFormat(28, 6, row[0], "", 0, "L", false, 0, "")
		setFont("", 10)
		pdf.MultiCell(0, 6, tr(row[1]), "", "L", false)
	}

	pdf.Ln(4)
	imgName := "qr-" + t.ID
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(qr))
	size := 60.0
	x := (148 - size) / 2
	pdf.ImageOptions(imgName, x, pdf.GetY(), size, size, true, opts, 0, "")

	setFont("", 8)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 5, "Code "+t.Code, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render ticket pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName is the attachment name of a ticket PDF
func FileName(t *domain.TicketDetails) string {
	return "ticket-" + t.ID + ".pdf"
}
