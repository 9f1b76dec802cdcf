package dto

import (
	"time"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/shopspring/decimal"
)

type AddCartItemRequest struct {
	EventTariffID string `json:"event_tariff_id" binding:"required,uuid"`
	Quantity      int    `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartLineResponse struct {
	ItemID        string          `json:"item_id"`
	EventTariffID string          `json:"event_tariff_id"`
	EventID       string          `json:"event_id"`
	EventTitle    string          `json:"event_title"`
	EventSlug     string          `json:"event_slug"`
	StartsAt      time.Time       `json:"starts_at"`
	TariffName    string          `json:"tariff_name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	Remaining     int             `json:"remaining"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

func NewCartResponse(cart *domain.Cart) *CartResponse {
	resp := &CartResponse{Items: make([]CartLineResponse, 0, len(cart.Lines)), Total: cart.Total()}
	for _, l := range cart.Lines {
		resp.Items = append(resp.Items, CartLineResponse{
			ItemID:        l.Item.ID,
			EventTariffID: l.Item.EventTariffID,
			EventID:       l.EventID,
			EventTitle:    l.EventTitle,
			EventSlug:     l.EventSlug,
			StartsAt:      l.StartsAt,
			TariffName:    l.Tariff.TariffName,
			UnitPrice:     l.Tariff.Price,
			Quantity:      l.Item.Quantity,
			Remaining:     l.Tariff.Remaining(),
			LineTotal:     l.LineTotal(),
		})
	}
	return resp
}
