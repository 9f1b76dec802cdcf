package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DashboardDays          = 30
	DashboardTopCategories = 8
	DashboardTopEvents     = 10
)

// DashboardScope limits stats to one organizer; empty means all events
type DashboardScope struct {
	OrganizerID string
}

type DashboardSummary struct {
	Revenue      decimal.Decimal `json:"revenue"`
	TicketsSold  int64           `json:"tickets_sold"`
	Remaining    int64           `json:"remaining"`
	CheckedIn    int64           `json:"checked_in"`
	PaidOrders   int64           `json:"paid_orders"`
	EventsTotal  int64           `json:"events_total"`
	EventsOnSale int64           `json:"events_on_sale"`
}

type DailySales struct {
	Day         time.Time       `json:"day"`
	Revenue     decimal.Decimal `json:"revenue"`
	TicketsSold int64           `json:"tickets_sold"`
}

type CategoryRevenue struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Revenue      decimal.Decimal `json:"revenue"`
	TicketsSold  int64           `json:"tickets_sold"`
}

type EventRevenue struct {
	EventID     string          `json:"event_id"`
	Title       string          `json:"title"`
	Revenue     decimal.Decimal `json:"revenue"`
	TicketsSold int64           `json:"tickets_sold"`
	CheckedIn   int64           `json:"checked_in"`
}

type Dashboard struct {
	Summary       DashboardSummary  `json:"summary"`
	Daily         []DailySales      `json:"daily"`
	TopCategories []CategoryRevenue `json:"top_categories"`
	TopEvents     []EventRevenue    `json:"top_events"`
}

// FillDays returns one entry per day in [from, from+days), zero-filled
func FillDays(from time.Time, days int, rows []DailySales) []DailySales {
	byDay := make(map[string]DailySales, len(rows))
	for _, r := range rows {
		byDay[r.Day.Format("2006-01-02")] = r
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	out := make([]DailySales, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		if r, ok := byDay[day.Format("2006-01-02")]; ok {
			r.Day = day
			out = append(out, r)
			continue
		}
		out = append(out, DailySales{Day: day, Revenue: decimal.Zero})
	}
	return out
}
