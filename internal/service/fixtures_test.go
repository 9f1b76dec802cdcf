package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// world is a small catalog: one buyer, one organizer, one moderator and a
// published concert with Standard (10 seats, 1500) and VIP (2 seats, 5000)
type world struct {
	store *memStore
	tx    *memTx

	buyer     *domain.User
	organizer *domain.User
	moderator *domain.User

	category *domain.Category
	event    *domain.Event
	standard *domain.EventTariff
	vip      *domain.EventTariff
}

func newWorld() *world {
	s := newMemStore()
	w := &world{store: s, tx: &memTx{store: s}}

	w.buyer = w.addUser("buyer@example.com", "Ivan Petrov", domain.RoleUser)
	w.organizer = w.addUser("org@example.com", "Concert Agency", domain.RoleOrganizer)
	w.moderator = w.addUser("mod@example.com", "Moderator", domain.RoleModerator)

	w.category = &domain.Category{ID: uuid.NewString(), Name: "Concerts", Slug: "concerts", CreatedAt: fixedNow}
	s.categories[w.category.ID] = w.category
	s.catalog["t-standard"] = &domain.Tariff{ID: "t-standard", Name: "Standard"}
	s.catalog["t-vip"] = &domain.Tariff{ID: "t-vip", Name: "VIP"}

	published := fixedNow.Add(-48 * time.Hour)
	w.event = w.addEvent("Spring Jazz Night", domain.EventStatusPublished)
	w.event.PublishedAt = &published

	w.standard = w.addTariff(w.event.ID, "t-standard", "Standard", "1500", 10)
	w.vip = w.addTariff(w.event.ID, "t-vip", "VIP", "5000", 2)
	s.events[w.event.ID].AvailableTickets = 12
	return w
}

func (w *world) addUser(email, name string, role domain.Role) *domain.User {
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      role,
		IsActive:  true,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
	w.store.users[u.ID] = u
	return u
}

func (w *world) addEvent(title string, status domain.EventStatus) *domain.Event {
	e := &domain.Event{
		ID:              uuid.NewString(),
		Title:           title,
		Slug:            domain.Slugify(title),
		CategoryID:      w.category.ID,
		OrganizerID:     w.organizer.ID,
		StartsAt:        fixedNow.Add(30 * 24 * time.Hour),
		DurationMinutes: 120,
		Location:        "Kazan, Pyramid hall",
		Capacity:        500,
		IsActive:        true,
		Status:          status,
		CreatedAt:       fixedNow,
		UpdatedAt:       fixedNow,
	}
	w.store.events[e.ID] = e
	return e
}

func (w *world) addTariff(eventID, tariffID, name, price string, quantity int) *domain.EventTariff {
	et := &domain.EventTariff{
		ID:                uuid.NewString(),
		EventID:           eventID,
		TariffID:          tariffID,
		TariffName:        name,
		Price:             decimal.RequireFromString(price),
		AvailableQuantity: quantity,
		IsActive:          true,
		CreatedAt:         fixedNow,
	}
	w.store.eventTariffs[et.ID] = et
	return et
}

func (w *world) putInCart(userID, eventTariffID string, quantity int) *domain.CartItem {
	item := &domain.CartItem{
		ID:            uuid.NewString(),
		UserID:        userID,
		EventTariffID: eventTariffID,
		Quantity:      quantity,
		CreatedAt:     fixedNow.Add(time.Duration(len(w.store.cart)) * time.Second),
	}
	w.store.cart[item.ID] = item
	return item
}

func (w *world) sales(eventTariffID string) int {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	return w.store.eventTariffs[eventTariffID].SalesCount
}

func (w *world) ticketCount() int {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	return len(w.store.tickets)
}

func (w *world) cartSize(userID string) int {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	n := 0
	for _, item := range w.store.cart {
		if item.UserID == userID {
			n++
		}
	}
	return n
}

func actorOf(u *domain.User) domain.Actor {
	return domain.Actor{UserID: u.ID, Role: u.Role}
}

func (w *world) orderService(notifier OrderNotifier) *orderService {
	svc := NewOrderService(
		w.tx,
		memOrders{w.store},
		memCart{w.store},
		memEventTariffs{w.store},
		cachedEvents{memEvents{w.store}},
		memTickets{w.store},
		memPayments{w.store},
		memUsers{w.store},
		notifier,
		&OrderServiceConfig{Currency: "RUB"},
	).(*orderService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}
