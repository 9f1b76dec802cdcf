package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/mailer"
)

// memStore is an in-memory database shared by the repository fakes below
type memStore struct {
	mu sync.Mutex

	users        map[string]*domain.User
	categories   map[string]*domain.Category
	catalog      map[string]*domain.Tariff
	events       map[string]*domain.Event
	eventTariffs map[string]*domain.EventTariff
	cart         map[string]*domain.CartItem
	orders       map[string]*domain.Order
	tickets      map[string]*domain.Ticket
	payments     []*domain.PaymentTransaction
	apps         map[string]*domain.OrganizerApplication
	favorites    map[string]*domain.Favorite
	contacts     map[string]*domain.ContactMessage

	locked       [][]string
	invalidated  int
	incrementErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[string]*domain.User),
		categories:   make(map[string]*domain.Category),
		catalog:      make(map[string]*domain.Tariff),
		events:       make(map[string]*domain.Event),
		eventTariffs: make(map[string]*domain.EventTariff),
		cart:         make(map[string]*domain.CartItem),
		orders:       make(map[string]*domain.Order),
		tickets:      make(map[string]*domain.Ticket),
		apps:         make(map[string]*domain.OrganizerApplication),
		favorites:    make(map[string]*domain.Favorite),
		contacts:     make(map[string]*domain.ContactMessage),
	}
}

func cloneEvent(e *domain.Event) *domain.Event {
	c := *e
	c.Tariffs = nil
	return &c
}

func cloneEventTariff(t *domain.EventTariff) *domain.EventTariff {
	c := *t
	return &c
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = make([]*domain.OrderItem, len(o.Items))
	for i, item := range o.Items {
		ic := *item
		c.Items[i] = &ic
	}
	return &c
}

func cloneTicket(t *domain.Ticket) *domain.Ticket {
	c := *t
	return &c
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

// snapshot copies the tables a transaction may touch
type memSnapshot struct {
	events       map[string]*domain.Event
	eventTariffs map[string]*domain.EventTariff
	cart         map[string]*domain.CartItem
	orders       map[string]*domain.Order
	tickets      map[string]*domain.Ticket
	users        map[string]*domain.User
	apps         map[string]*domain.OrganizerApplication
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{
		events:       make(map[string]*domain.Event, len(s.events)),
		eventTariffs: make(map[string]*domain.EventTariff, len(s.eventTariffs)),
		cart:         make(map[string]*domain.CartItem, len(s.cart)),
		orders:       make(map[string]*domain.Order, len(s.orders)),
		tickets:      make(map[string]*domain.Ticket, len(s.tickets)),
		users:        make(map[string]*domain.User, len(s.users)),
		apps:         make(map[string]*domain.OrganizerApplication, len(s.apps)),
	}
	for k, v := range s.events {
		snap.events[k] = cloneEvent(v)
	}
	for k, v := range s.eventTariffs {
		snap.eventTariffs[k] = cloneEventTariff(v)
	}
	for k, v := range s.cart {
		c := *v
		snap.cart[k] = &c
	}
	for k, v := range s.orders {
		snap.orders[k] = cloneOrder(v)
	}
	for k, v := range s.tickets {
		snap.tickets[k] = cloneTicket(v)
	}
	for k, v := range s.users {
		snap.users[k] = cloneUser(v)
	}
	for k, v := range s.apps {
		c := *v
		snap.apps[k] = &c
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = snap.events
	s.eventTariffs = snap.eventTariffs
	s.cart = snap.cart
	s.orders = snap.orders
	s.tickets = snap.tickets
	s.users = snap.users
	s.apps = snap.apps
}

// memTx serializes transactions and rolls the store back on error
type memTx struct {
	store *memStore
	mu    sync.Mutex
	calls int
}

func (t *memTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++

	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// users

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) UpdateProfile(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	stored.Name, stored.Phone, stored.UpdatedAt = u.Name, u.Phone, u.UpdatedAt
	return nil
}

func (r memUsers) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	stored.Role = role
	return nil
}

// catalog

type memCategories struct{ s *memStore }

func (r memCategories) List(_ context.Context) ([]*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCategories) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return c, nil
}

func (r memCategories) Create(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.Slug == c.Slug {
			return domain.ErrCategoryExists
		}
	}
	r.s.categories[c.ID] = c
	return nil
}

type memCatalog struct{ s *memStore }

func (r memCatalog) List(_ context.Context) ([]*domain.Tariff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Tariff, 0, len(r.s.catalog))
	for _, t := range r.s.catalog {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCatalog) GetByID(_ context.Context, id string) (*domain.Tariff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.catalog[id]
	if !ok {
		return nil, domain.ErrTariffNotFound
	}
	return t, nil
}

func (r memCatalog) Create(_ context.Context, t *domain.Tariff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.catalog {
		if strings.EqualFold(existing.Name, t.Name) {
			return domain.ErrTariffExists
		}
	}
	r.s.catalog[t.ID] = t
	return nil
}

// events

type memEvents struct{ s *memStore }

func (r memEvents) Create(_ context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events[e.ID] = cloneEvent(e)
	return nil
}

func (r memEvents) Update(_ context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[e.ID]; !ok {
		return domain.ErrEventNotFound
	}
	r.s.events[e.ID] = cloneEvent(e)
	return nil
}

func (r memEvents) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(r.s.events, id)
	return nil
}

func (r memEvents) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return cloneEvent(e), nil
}

func (r memEvents) GetBySlug(_ context.Context, slug string) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.events {
		if e.Slug == slug {
			return cloneEvent(e), nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (r memEvents) SlugExists(_ context.Context, slug string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.events {
		if e.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r memEvents) List(_ context.Context, f domain.EventFilter) ([]*domain.Event, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var all []*domain.Event
	for _, e := range r.s.events {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.OnlyActive && !e.IsActive {
			continue
		}
		if f.OrganizerID != "" && e.OrganizerID != f.OrganizerID {
			continue
		}
		if f.CategorySlug != "" {
			c, ok := r.s.categories[e.CategoryID]
			if !ok || c.Slug != f.CategorySlug {
				continue
			}
		}
		all = append(all, cloneEvent(e))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartsAt.After(all[j].StartsAt) })

	total := len(all)
	if f.Offset >= total {
		return []*domain.Event{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return all[f.Offset:end], total, nil
}

func (r memEvents) IncrementViews(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	e.ViewsCount++
	return nil
}

func (r memEvents) UpdateStatus(_ context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.events[e.ID]
	if !ok {
		return domain.ErrEventNotFound
	}
	stored.Status = e.Status
	stored.PublishedAt = e.PublishedAt
	stored.ModeratedBy = e.ModeratedBy
	stored.ModerationComment = e.ModerationComment
	return nil
}

func (r memEvents) RecomputeAvailable(_ context.Context, eventID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	var tariffs []*domain.EventTariff
	for _, t := range r.s.eventTariffs {
		if t.EventID == eventID {
			tariffs = append(tariffs, t)
		}
	}
	e.AvailableTickets = domain.AvailableFromTariffs(tariffs)
	return nil
}

// cachedEvents counts invalidations like the Redis decorator would
type cachedEvents struct{ memEvents }

func (r cachedEvents) Invalidate(context.Context) {
	r.s.mu.Lock()
	r.s.invalidated++
	r.s.mu.Unlock()
}

// event tariffs

type memEventTariffs struct{ s *memStore }

func (r memEventTariffs) ListByEvent(_ context.Context, eventID string) ([]*domain.EventTariff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.EventTariff
	for _, t := range r.s.eventTariffs {
		if t.EventID == eventID {
			out = append(out, cloneEventTariff(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	return out, nil
}

func (r memEventTariffs) ListByEvents(ctx context.Context, eventIDs []string) (map[string][]*domain.EventTariff, error) {
	out := make(map[string][]*domain.EventTariff, len(eventIDs))
	for _, id := range eventIDs {
		list, _ := r.ListByEvent(ctx, id)
		out[id] = list
	}
	return out, nil
}

func (r memEventTariffs) GetByID(_ context.Context, id string) (*domain.EventTariff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.eventTariffs[id]
	if !ok {
		return nil, domain.ErrEventTariffNotFound
	}
	return cloneEventTariff(t), nil
}

func (r memEventTariffs) Create(_ context.Context, et *domain.EventTariff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.eventTariffs {
		if t.EventID == et.EventID && t.TariffID == et.TariffID {
			return domain.ErrEventTariffExists
		}
	}
	r.s.eventTariffs[et.ID] = cloneEventTariff(et)
	return nil
}

func (r memEventTariffs) Update(_ context.Context, et *domain.EventTariff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.eventTariffs[et.ID]; !ok {
		return domain.ErrEventTariffNotFound
	}
	r.s.eventTariffs[et.ID] = cloneEventTariff(et)
	return nil
}

func (r memEventTariffs) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.eventTariffs[id]; !ok {
		return domain.ErrEventTariffNotFound
	}
	delete(r.s.eventTariffs, id)
	return nil
}

func (r memEventTariffs) LockForUpdate(_ context.Context, ids []string) ([]*domain.EventTariff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.locked = append(r.s.locked, append([]string(nil), ids...))
	out := make([]*domain.EventTariff, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.s.eventTariffs[id]; ok {
			out = append(out, cloneEventTariff(t))
		}
	}
	return out, nil
}

func (r memEventTariffs) IncrementSales(_ context.Context, id string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.incrementErr != nil {
		return r.s.incrementErr
	}
	t, ok := r.s.eventTariffs[id]
	if !ok {
		return domain.ErrEventTariffNotFound
	}
	t.SalesCount += quantity
	return nil
}

// cart

type memCart struct{ s *memStore }

func (r memCart) GetByID(_ context.Context, id string) (*domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.cart[id]
	if !ok {
		return nil, domain.ErrCartItemNotFound
	}
	c := *item
	return &c, nil
}

func (r memCart) GetByTariff(_ context.Context, userID, eventTariffID string) (*domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, item := range r.s.cart {
		if item.UserID == userID && item.EventTariffID == eventTariffID {
			c := *item
			return &c, nil
		}
	}
	return nil, domain.ErrCartItemNotFound
}

func (r memCart) Create(_ context.Context, item *domain.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *item
	r.s.cart[item.ID] = &c
	return nil
}

func (r memCart) UpdateQuantity(_ context.Context, id string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.cart[id]
	if !ok {
		return domain.ErrCartItemNotFound
	}
	item.Quantity = quantity
	return nil
}

func (r memCart) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cart[id]; !ok {
		return domain.ErrCartItemNotFound
	}
	delete(r.s.cart, id)
	return nil
}

func (r memCart) ClearForUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, item := range r.s.cart {
		if item.UserID == userID {
			delete(r.s.cart, id)
		}
	}
	return nil
}

func (r memCart) ListLines(_ context.Context, userID string) ([]*domain.CartLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var lines []*domain.CartLine
	for _, item := range r.s.cart {
		if item.UserID != userID {
			continue
		}
		et := r.s.eventTariffs[item.EventTariffID]
		e := r.s.events[et.EventID]
		c := *item
		lines = append(lines, &domain.CartLine{
			Item:       &c,
			Tariff:     cloneEventTariff(et),
			EventID:    e.ID,
			EventTitle: e.Title,
			EventSlug:  e.Slug,
			StartsAt:   e.StartsAt,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Item.CreatedAt.Before(lines[j].Item.CreatedAt) })
	return lines, nil
}

// orders

type memOrders struct{ s *memStore }

func (r memOrders) Create(_ context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r memOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r memOrders) GetForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r memOrders) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memOrders) UpdateStatus(_ context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	stored.Status, stored.PaidAt, stored.CanceledAt = o.Status, o.PaidAt, o.CanceledAt
	return nil
}

func (r memOrders) ListPendingBefore(_ context.Context, before time.Time, limit int) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for _, o := range r.s.orders {
		if o.IsPending() && o.CreatedAt.Before(before) {
			ids = append(ids, o.ID)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// tickets

type memTickets struct{ s *memStore }

func (r memTickets) details(t *domain.Ticket) *domain.TicketDetails {
	d := &domain.TicketDetails{Ticket: *cloneTicket(t)}
	if e, ok := r.s.events[t.EventID]; ok {
		d.EventTitle, d.EventSlug, d.OrganizerID = e.Title, e.Slug, e.OrganizerID
		d.StartsAt, d.DurationMinutes, d.Location = e.StartsAt, e.DurationMinutes, e.Location
		if c, ok := r.s.categories[e.CategoryID]; ok {
			d.CategoryName = c.Name
		}
	}
	if et, ok := r.s.eventTariffs[t.EventTariffID]; ok {
		d.TariffName, d.Price = et.TariffName, et.Price
	}
	if u, ok := r.s.users[t.UserID]; ok {
		d.BuyerName, d.BuyerEmail = u.Name, u.Email
	}
	return d
}

func (r memTickets) CreateBatch(_ context.Context, tickets []*domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range tickets {
		r.s.tickets[t.ID] = cloneTicket(t)
	}
	return nil
}

func (r memTickets) GetDetails(_ context.Context, id string) (*domain.TicketDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return r.details(t), nil
}

func (r memTickets) GetDetailsByCode(_ context.Context, code string) (*domain.TicketDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tickets {
		if t.Code == code {
			return r.details(t), nil
		}
	}
	return nil, domain.ErrTicketNotFound
}

func (r memTickets) list(keep func(*domain.Ticket) bool) []*domain.TicketDetails {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.TicketDetails
	for _, t := range r.s.tickets {
		if keep(t) {
			out = append(out, r.details(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memTickets) ListDetails(_ context.Context, ids []string) ([]*domain.TicketDetails, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.list(func(t *domain.Ticket) bool { return want[t.ID] }), nil
}

func (r memTickets) ListByUser(_ context.Context, userID string) ([]*domain.TicketDetails, error) {
	return r.list(func(t *domain.Ticket) bool { return t.UserID == userID }), nil
}

func (r memTickets) ListByEvent(_ context.Context, eventID string) ([]*domain.TicketDetails, error) {
	return r.list(func(t *domain.Ticket) bool { return t.EventID == eventID }), nil
}

func (r memTickets) SetUsed(_ context.Context, id string, used bool, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return false, domain.ErrTicketNotFound
	}
	if t.IsUsed == used {
		return false, nil
	}
	t.IsUsed = used
	if used {
		t.UsedAt = &at
	} else {
		t.UsedAt = nil
	}
	return true, nil
}

// payments

type memPayments struct{ s *memStore }

func (r memPayments) Upsert(_ context.Context, tx *domain.PaymentTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[tx.OrderID]; !ok {
		return domain.ErrOrderNotFound
	}
	for _, p := range r.s.payments {
		if p.PaymentID == tx.PaymentID {
			p.Status, p.Event, p.RawPayload, p.UpdatedAt = tx.Status, tx.Event, tx.RawPayload, tx.UpdatedAt
			return nil
		}
	}
	c := *tx
	r.s.payments = append(r.s.payments, &c)
	return nil
}

func (r memPayments) GetLatestForOrder(_ context.Context, orderID string) (*domain.PaymentTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.payments) - 1; i >= 0; i-- {
		if r.s.payments[i].OrderID == orderID {
			c := *r.s.payments[i]
			return &c, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (r memPayments) HasOpenPayment(_ context.Context, orderID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.OrderID == orderID && p.Status.HoldsOrder() {
			return true, nil
		}
	}
	return false, nil
}

// organizer applications

type memApps struct{ s *memStore }

func (r memApps) Create(_ context.Context, a *domain.OrganizerApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.apps {
		if existing.UserID == a.UserID && existing.Status.IsActive() {
			return domain.ErrApplicationActive
		}
	}
	c := *a
	r.s.apps[a.ID] = &c
	return nil
}

func (r memApps) GetByID(_ context.Context, id string) (*domain.OrganizerApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	c := *a
	return &c, nil
}

func (r memApps) ListByUser(_ context.Context, userID string) ([]*domain.OrganizerApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.OrganizerApplication
	for _, a := range r.s.apps {
		if a.UserID == userID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memApps) List(_ context.Context, status domain.ApplicationStatus) ([]*domain.OrganizerApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.OrganizerApplication
	for _, a := range r.s.apps {
		if status == "" || a.Status == status {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memApps) Update(_ context.Context, a *domain.OrganizerApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.apps[a.ID]; !ok {
		return domain.ErrApplicationNotFound
	}
	c := *a
	r.s.apps[a.ID] = &c
	return nil
}

// favorites

type memFavorites struct{ s *memStore }

func (r memFavorites) Add(_ context.Context, f *domain.Favorite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := f.UserID + "|" + f.EventID
	if _, ok := r.s.favorites[key]; !ok {
		c := *f
		r.s.favorites[key] = &c
	}
	return nil
}

func (r memFavorites) Remove(_ context.Context, userID, eventID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := userID + "|" + eventID
	if _, ok := r.s.favorites[key]; !ok {
		return domain.ErrFavoriteNotFound
	}
	delete(r.s.favorites, key)
	return nil
}

func (r memFavorites) ListByUser(_ context.Context, userID string) ([]*domain.Favorite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Favorite
	for _, f := range r.s.favorites {
		if f.UserID == userID {
			c := *f
			out = append(out, &c)
		}
	}
	return out, nil
}

// contact messages

type memContacts struct{ s *memStore }

func (r memContacts) Create(_ context.Context, m *domain.ContactMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *m
	r.s.contacts[m.ID] = &c
	return nil
}

func (r memContacts) List(_ context.Context, status domain.ContactStatus, limit, offset int) ([]*domain.ContactMessage, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*domain.ContactMessage
	for _, m := range r.s.contacts {
		if status == "" || m.Status == status {
			c := *m
			all = append(all, &c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset >= total {
		return []*domain.ContactMessage{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r memContacts) UpdateStatus(_ context.Context, id string, status domain.ContactStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.contacts[id]
	if !ok {
		return domain.ErrContactNotFound
	}
	m.Status = status
	return nil
}

// collaborators

// recordingSender keeps every message instead of sending it
type recordingSender struct {
	mu   sync.Mutex
	sent []*mailer.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg *mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []*mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*mailer.Message(nil), s.sent...)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []*domain.OrderPaidEvent
	err    error
}

func (n *recordingNotifier) OrderPaid(_ context.Context, evt *domain.OrderPaidEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
	return n.err
}

type stubRenderer struct {
	err error
}

func (r stubRenderer) QRCode(payload string) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("png:" + payload), nil
}

func (r stubRenderer) TicketPDF(t *domain.TicketDetails) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF " + t.ID), nil
}
