package mailer

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/config"
	"github.com/railxam2004/CulT/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPSender_Validation(t *testing.T) {
	_, err := NewSMTPSender(&config.SMTPConfig{From: "a@b.io", Port: 587})
	assert.Error(t, err)

	_, err = NewSMTPSender(&config.SMTPConfig{Host: "smtp.example.com", Port: 587})
	assert.Error(t, err)

	s, err := NewSMTPSender(&config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "tickets@example.com", UseTLS: true})
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestNew_DisabledUsesLogSender(t *testing.T) {
	s, err := New(&config.SMTPConfig{Enabled: false})
	require.NoError(t, err)
	_, ok := s.(*LogSender)
	assert.True(t, ok)
}

func TestLogSender_RequiresRecipient(t *testing.T) {
	s := NewLogSender(logger.Nop())
	assert.Error(t, s.Send(context.Background(), &Message{Subject: "x"}))
	assert.NoError(t, s.Send(context.Background(), &Message{To: []string{"a@b.io"}, Subject: "x"}))
}

func TestBuildMsg(t *testing.T) {
	msg := &Message{
		To:      []string{"buyer@example.com"},
		ReplyTo: "help@example.com",
		Subject: "Your tickets",
		Body:    "hello",
		Attachments: []Attachment{
			{Name: "ticket.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
		},
	}
	m, err := buildMsg("tickets@example.com", msg)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Subject: Your tickets")
	assert.Contains(t, out, "buyer@example.com")
	assert.Contains(t, out, "ticket.pdf")

	_, err = buildMsg("tickets@example.com", &Message{Subject: "x"})
	assert.Error(t, err)

	_, err = buildMsg("not an address", msg)
	assert.Error(t, err)
}

func TestTicketsMessage(t *testing.T) {
	tickets := []*domain.TicketDetails{{
		EventTitle: "Jazz night",
		StartsAt:   time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC),
		Location:   "Main hall",
		TariffName: "VIP",
	}}
	pdfs := []Attachment{{Name: "ticket-1.pdf"}}

	m := TicketsMessage("buyer@example.com", "Ann", "o-1", tickets, pdfs)
	assert.Equal(t, []string{"buyer@example.com"}, m.To)
	assert.Contains(t, m.Subject, "o-1")
	assert.Contains(t, m.Body, "Hello, Ann!")
	assert.Contains(t, m.Body, "Jazz night, 01.05.2026 19:00, Main hall (VIP)")
	assert.Len(t, m.Attachments, 1)
}

func TestContactNotification(t *testing.T) {
	m := ContactNotification("staff@example.com", &domain.ContactMessage{
		Name: "Bob", Phone: "+7 999 123-45-67", Subject: "Refund", Message: "Please call me",
	})
	assert.Equal(t, "Contact form: Refund", m.Subject)
	assert.Contains(t, m.Body, "Phone: +7 999 123-45-67")
	assert.NotContains(t, m.Body, "Email:")
	assert.Empty(t, m.ReplyTo)
}
