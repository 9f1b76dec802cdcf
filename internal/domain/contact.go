package domain

import (
	"strings"
	"time"
)

type ContactStatus string

const (
	ContactStatusNew        ContactStatus = "new"
	ContactStatusInProgress ContactStatus = "in_progress"
	ContactStatusClosed     ContactStatus = "closed"
)

func (s ContactStatus) IsValid() bool {
	return s == ContactStatusNew || s == ContactStatusInProgress || s == ContactStatusClosed
}

// ContactMessage is a feedback form submission
type ContactMessage struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email,omitempty"`
	Phone     string        `json:"phone,omitempty"`
	Subject   string        `json:"subject,omitempty"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Validate requires a way to answer the sender
func (m *ContactMessage) Validate() error {
	if strings.TrimSpace(m.Email) == "" && strings.TrimSpace(m.Phone) == "" {
		return ErrContactMissing
	}
	return nil
}
