package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Ticket struct {
	ID            string     `json:"id"`
	OrderID       string     `json:"order_id"`
	UserID        string     `json:"user_id"`
	EventID       string     `json:"event_id"`
	EventTariffID string     `json:"event_tariff_id"`
	Code          string     `json:"code"`
	IsUsed        bool       `json:"is_used"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewTicketCode returns a random 32 character hex code
func NewTicketCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// QRPayload is the string encoded in the ticket QR image
func (t *Ticket) QRPayload() string {
	return fmt.Sprintf("TICKET:%s|HASH:%s|EVENT:%s", t.ID, t.Code, t.EventID)
}

// ScanRef is what a scanner submitted: a full QR payload or a bare code
type ScanRef struct {
	TicketID string
	Code     string
	EventID  string
}

// ParseScanInput accepts either a QR payload or a bare ticket code
func ParseScanInput(input string) (ScanRef, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return ScanRef{}, ErrInvalidQRCode
	}
	if !strings.HasPrefix(input, "TICKET:") {
		if strings.ContainsAny(input, "|: ") {
			return ScanRef{}, ErrInvalidQRCode
		}
		return ScanRef{Code: strings.ToLower(input)}, nil
	}

	var ref ScanRef
	for _, part := range strings.Split(input, "|") {
		key, value, ok := strings.Cut(part, ":")
		if !ok || value == "" {
			return ScanRef{}, ErrInvalidQRCode
		}
		switch key {
		case "TICKET":
			ref.TicketID = value
		case "HASH":
			ref.Code = strings.ToLower(value)
		case "EVENT":
			ref.EventID = value
		default:
			return ScanRef{}, ErrInvalidQRCode
		}
	}
	if ref.Code == "" {
		return ScanRef{}, ErrInvalidQRCode
	}
	return ref, nil
}

// Matches checks the optional ticket/event parts of a payload against t
func (r ScanRef) Matches(t *Ticket) bool {
	if r.Code != t.Code {
		return false
	}
	if r.TicketID != "" && r.TicketID != t.ID {
		return false
	}
	if r.EventID != "" && r.EventID != t.EventID {
		return false
	}
	return true
}

// TicketDetails is a ticket with everything printed on it
type TicketDetails struct {
	Ticket
	EventTitle      string          `json:"event_title"`
	EventSlug       string          `json:"event_slug"`
	CategoryName    string          `json:"category_name"`
	StartsAt        time.Time       `json:"starts_at"`
	DurationMinutes int             `json:"duration_minutes"`
	Location        string          `json:"location"`
	OrganizerID     string          `json:"organizer_id"`
	TariffName      string          `json:"tariff_name"`
	Price           decimal.Decimal `json:"price"`
	BuyerName       string          `json:"buyer_name"`
	BuyerEmail      string          `json:"buyer_email"`
}

// ScanResult is returned by a check-in scan
type ScanResult struct {
	Ticket      *TicketDetails `json:"ticket"`
	AlreadyUsed bool           `json:"already_used"`
	MarkedUsed  bool           `json:"marked_used"`
}
