package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventStatus is the moderation state of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPending   EventStatus = "pending"
	EventStatusPublished EventStatus = "published"
	EventStatusRejected  EventStatus = "rejected"
)

func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusPending, EventStatusPublished, EventStatusRejected:
		return true
	}
	return false
}

type Event struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Slug              string      `json:"slug"`
	Description       string      `json:"description"`
	CategoryID        string      `json:"category_id"`
	CategoryName      string      `json:"category_name,omitempty"`
	OrganizerID       string      `json:"organizer_id"`
	StartsAt          time.Time   `json:"starts_at"`
	DurationMinutes   int         `json:"duration_minutes"`
	Location          string      `json:"location"`
	Capacity          int         `json:"capacity"`
	AvailableTickets  int         `json:"available_tickets"`
	ViewsCount        int64       `json:"views_count"`
	IsActive          bool        `json:"is_active"`
	Status            EventStatus `json:"status"`
	PublishedAt       *time.Time  `json:"published_at,omitempty"`
	ModeratedBy       *string     `json:"moderated_by,omitempty"`
	ModerationComment string      `json:"moderation_comment,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`

	Tariffs []*EventTariff `json:"tariffs,omitempty"`
}

// IsOnSale reports whether the public can buy tickets
func (e *Event) IsOnSale() bool {
	return e.Status == EventStatusPublished && e.IsActive
}

// VisibleTo reports whether the actor may read an unpublished event
func (e *Event) VisibleTo(actor Actor) bool {
	if e.Status == EventStatusPublished && e.IsActive {
		return true
	}
	return actor.IsStaff() || (actor.UserID != "" && actor.UserID == e.OrganizerID)
}

// CanEdit is true for the organizer (or staff) while the event is not published
func (e *Event) CanEdit(actor Actor) error {
	if !actor.IsStaff() && actor.UserID != e.OrganizerID {
		return ErrForbidden
	}
	if e.Status == EventStatusPublished {
		return ErrEventNotEditable
	}
	return nil
}

// CanSubmit checks the draft/rejected -> pending transition
func (e *Event) CanSubmit() error {
	if e.Status != EventStatusDraft && e.Status != EventStatusRejected {
		return ErrInvalidEventTransition
	}
	return nil
}

// CanPublish checks the -> published transition
func (e *Event) CanPublish() error {
	if e.Status == EventStatusPublished {
		return ErrInvalidEventTransition
	}
	return nil
}

// CanReject checks the -> rejected transition
func (e *Event) CanReject() error {
	if e.Status != EventStatusPending && e.Status != EventStatusPublished {
		return ErrInvalidEventTransition
	}
	return nil
}

// HasSellableTariff is true when an active tariff has remaining > 0
func (e *Event) HasSellableTariff() bool {
	for _, t := range e.Tariffs {
		if t.IsActive && t.Remaining() > 0 {
			return true
		}
	}
	return false
}

// AvailableFromTariffs sums remaining over active tariffs
func AvailableFromTariffs(tariffs []*EventTariff) int {
	total := 0
	for _, t := range tariffs {
		if t.IsActive {
			total += t.Remaining()
		}
	}
	return total
}

// EventTariff is the quota and price of a tariff for one event
type EventTariff struct {
	ID                string          `json:"id"`
	EventID           string          `json:"event_id"`
	TariffID          string          `json:"tariff_id"`
	TariffName        string          `json:"tariff_name,omitempty"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity"`
	SalesCount        int             `json:"sales_count"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Remaining is max(available_quantity - sales_count, 0)
func (t *EventTariff) Remaining() int {
	if r := t.AvailableQuantity - t.SalesCount; r > 0 {
		return r
	}
	return 0
}

// EventFilter selects events for list queries
type EventFilter struct {
	CategorySlug string
	OrganizerID  string
	Status       EventStatus
	OnlyActive   bool
	Limit        int
	Offset       int
}

// Favorite marks an event a user wants to follow
type Favorite struct {
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
	Event     *Event    `json:"event,omitempty"`
}
