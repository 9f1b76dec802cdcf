package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEventRequest is submitted by organizers; the slug is generated
type CreateEventRequest struct {
	Title           string    `json:"title" binding:"required,min=1,max=255"`
	Description     string    `json:"description"`
	CategoryID      string    `json:"category_id" binding:"required,uuid"`
	StartsAt        time.Time `json:"starts_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"gte=0,lte=10080"`
	Location        string    `json:"location" binding:"required,max=255"`
	Capacity        int       `json:"capacity" binding:"gte=0"`
	IsActive        *bool     `json:"is_active"`
}

// UpdateEventRequest carries only the fields to change
type UpdateEventRequest struct {
	Title           *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description     *string    `json:"description"`
	CategoryID      *string    `json:"category_id" binding:"omitempty,uuid"`
	StartsAt        *time.Time `json:"starts_at"`
	DurationMinutes *int       `json:"duration_minutes" binding:"omitempty,gte=0,lte=10080"`
	Location        *string    `json:"location" binding:"omitempty,max=255"`
	Capacity        *int       `json:"capacity" binding:"omitempty,gte=0"`
	IsActive        *bool      `json:"is_active"`
}

// PublicEventQuery filters the public listing
type PublicEventQuery struct {
	PageQuery
	Category string `form:"category"`
}

// ModerationQuery filters the moderation queue
type ModerationQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=draft pending published rejected"`
}

type RejectEventRequest struct {
	Comment string `json:"comment" binding:"required,min=1,max=2000"`
}

type AddEventTariffRequest struct {
	TariffID          string          `json:"tariff_id" binding:"required,uuid"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity" binding:"required,min=1"`
	IsActive          *bool           `json:"is_active"`
}

type UpdateEventTariffRequest struct {
	Price             *decimal.Decimal `json:"price"`
	AvailableQuantity *int             `json:"available_quantity" binding:"omitempty,min=0"`
	IsActive          *bool            `json:"is_active"`
}
