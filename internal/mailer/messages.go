package mailer

import (
	"fmt"
	"strings"

	"github.com/railxam2004/CulT/internal/domain"
)

const dateLayout = "02.01.2006 15:04"

// TicketsMessage is the e-mail carrying the PDF tickets of a paid order
func TicketsMessage(to, buyer, orderID string, tickets []*domain.TicketDetails, pdfs []Attachment) *Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello, %s!\n\n", buyer)
	fmt.Fprintf(&b, "Thank you for your purchase. Order #%s is paid.\n", orderID)
	fmt.Fprintf(&b, "Your tickets (%d) are attached to this message.\n\n", len(tickets))
	for _, t := range tickets {
		fmt.Fprintf(&b, "- %s, %s, %s (%s)\n", t.EventTitle, t.StartsAt.Format(dateLayout), t.Location, t.TariffName)
	}
	b.WriteString("\nShow the QR code at the entrance. Each ticket admits one person.\n")

	return &Message{
		To:          []string{to},
		Subject:     fmt.Sprintf("Your tickets for order #%s", orderID),
		Body:        b.String(),
		Attachments: pdfs,
	}
}

// ContactNotification forwards a feedback form to the site staff
func ContactNotification(to string, msg *domain.ContactMessage) *Message {
	var b strings.Builder
	fmt.Fprintf(&b, "New message from the contact form\n\n")
	fmt.Fprintf(&b, "Name: %s\n", msg.Name)
	if msg.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", msg.Email)
	}
	if msg.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", msg.Phone)
	}
	if msg.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	}
	fmt.Fprintf(&b, "\n%s\n", msg.Message)

	subject := "Contact form"
	if msg.Subject != "" {
		subject += ": " + msg.Subject
	}
	return &Message{
		To:      []string{to},
		ReplyTo: msg.Email,
		Subject: subject,
		Body:    b.String(),
	}
}
