package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/metrics"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/pkg/logger"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// OrderService turns carts into orders and orders into tickets
type OrderService interface {
	// Checkout snapshots the cart into a PENDING order; the cart is kept
	Checkout(ctx context.Context, userID string) (*domain.Order, error)
	// Cancel returns domain.ErrPaymentInProgress while a payment of the order may still succeed
	Cancel(ctx context.Context, actor domain.Actor, orderID string) (*domain.Order, error)
	List(ctx context.Context, userID string) ([]*domain.Order, error)
	Get(ctx context.Context, actor domain.Actor, orderID string) (*domain.Order, error)
	// FinalizePayment marks the order paid and mints tickets in one transaction.
	// A nil actor skips the ownership check (webhooks). Non-pending orders are
	// returned unchanged.
	FinalizePayment(ctx context.Context, orderID string, actor *domain.Actor) (*domain.Order, error)
	// ExpirePending cancels PENDING orders created before the cutoff.
	// Orders with a payment that may still succeed are left alone.
	ExpirePending(ctx context.Context, before time.Time, limit int) (int, error)
}

type OrderServiceConfig struct {
	Currency string
}

type orderService struct {
	tx          repository.Transactor
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	tariffRepo  repository.EventTariffRepository
	eventRepo   repository.EventRepository
	ticketRepo  repository.TicketRepository
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	notifier    OrderNotifier
	config      *OrderServiceConfig
	now         func() time.Time
}

func NewOrderService(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	tariffRepo repository.EventTariffRepository,
	eventRepo repository.EventRepository,
	ticketRepo repository.TicketRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	notifier OrderNotifier,
	config *OrderServiceConfig,
) OrderService {
	if config == nil {
		config = &OrderServiceConfig{}
	}
	if config.Currency == "" {
		config.Currency = domain.DefaultCurrency
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &orderService{
		tx:          tx,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		tariffRepo:  tariffRepo,
		eventRepo:   eventRepo,
		ticketRepo:  ticketRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		config:      config,
		now:         time.Now,
	}
}

func (s *orderService) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.checkout")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID))

	lines, err := s.cartRepo.ListLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrCartEmpty
	}

	order := &domain.Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Status:    domain.OrderStatusPending,
		Currency:  s.config.Currency,
		CreatedAt: s.now(),
	}
	onSale := make(map[string]bool)
	for _, l := range lines {
		sale, seen := onSale[l.EventID]
		if !seen {
			event, err := s.eventRepo.GetByID(ctx, l.EventID)
			if err != nil {
				return nil, err
			}
			sale = event.IsOnSale()
			onSale[l.EventID] = sale
		}
		if !sale || !l.Tariff.IsActive {
			return nil, fmt.Errorf("%w: %s", domain.ErrEventNotOnSale, l.EventTitle)
		}
		if l.Item.Quantity > l.Tariff.Remaining() {
			metrics.RecordQuotaRejection(ctx, "checkout")
			return nil, fmt.Errorf("%w: %s (%s)", domain.ErrInsufficientQuota, l.EventTitle, l.Tariff.TariffName)
		}
		order.Items = append(order.Items, &domain.OrderItem{
			ID:            uuid.New().String(),
			OrderID:       order.ID,
			EventID:       l.EventID,
			EventTariffID: l.Tariff.ID,
			Quantity:      l.Item.Quantity,
			UnitPrice:     l.Tariff.Price,
			EventTitle:    l.EventTitle,
			TariffName:    l.Tariff.TariffName,
		})
	}
	order.RecalculateTotal()

	if err := s.orderRepo.Create(ctx, order); err != nil {
		span.RecordError(err)
		return nil, err
	}

	metrics.RecordOrderCreated(ctx, order.TicketCount())
	span.SetAttributes(attribute.String("order_id", order.ID))
	return order, nil
}

func (s *orderService) Cancel(ctx context.Context, actor domain.Actor, orderID string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.cancel")
	defer span.End()

	var order *domain.Order
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != actor.UserID {
			return domain.ErrForbidden
		}
		if order.IsPending() {
			open, err := s.paymentRepo.HasOpenPayment(ctx, order.ID)
			if err != nil {
				return err
			}
			if open {
				return domain.ErrPaymentInProgress
			}
		}
		if err := order.Cancel(s.now()); err != nil {
			return err
		}
		return s.orderRepo.UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordOrderCanceled(ctx, false)
	return order, nil
}

func (s *orderService) List(ctx context.Context, userID string) ([]*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.list")
	defer span.End()

	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *orderService) Get(ctx context.Context, actor domain.Actor, orderID string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.get")
	defer span.End()

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID && !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func (s *orderService) FinalizePayment(ctx context.Context, orderID string, actor *domain.Actor) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.finalize_payment")
	defer span.End()
	span.SetAttributes(attribute.String("order_id", orderID))

	start := s.now()
	var (
		order   *domain.Order
		tickets []*domain.Ticket
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if actor != nil && order.UserID != actor.UserID && !actor.IsStaff() {
			return domain.ErrForbidden
		}
		if !order.IsPending() {
			return nil
		}

		tickets, err = s.settle(ctx, order)
		return err
	})
	elapsed := s.now().Sub(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		reason := "error"
		if errors.Is(err, domain.ErrInsufficientQuota) {
			reason = "quota"
			metrics.RecordQuotaRejection(ctx, "finalize")
		}
		metrics.RecordFinalizeFailure(ctx, reason, elapsed)
		return nil, err
	}
	if tickets == nil {
		span.AddEvent("order already finalized")
		return order, nil
	}

	metrics.RecordOrderPaid(ctx, len(tickets), elapsed)
	invalidateEvents(ctx, s.eventRepo)
	logger.Get().WithContext(ctx).Info("order paid",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Int("tickets", len(tickets)),
	)

	s.notifyPaid(ctx, order, tickets)
	return order, nil
}

// settle runs inside the finalization transaction with the order row locked
func (s *orderService) settle(ctx context.Context, order *domain.Order) ([]*domain.Ticket, error) {
	wanted := make(map[string]int)
	for _, item := range order.Items {
		wanted[item.EventTariffID] += item.Quantity
	}
	ids := make([]string, 0, len(wanted))
	for id := range wanted {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	locked, err := s.tariffRepo.LockForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.EventTariff, len(locked))
	for _, et := range locked {
		byID[et.ID] = et
	}

	for _, id := range ids {
		et, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrEventTariffNotFound, id)
		}
		if wanted[id] > et.Remaining() {
			return nil, fmt.Errorf("%w: %s has %d left, %d requested",
				domain.ErrInsufficientQuota, et.TariffName, et.Remaining(), wanted[id])
		}
	}
	for _, id := range ids {
		if err := s.tariffRepo.IncrementSales(ctx, id, wanted[id]); err != nil {
			return nil, err
		}
	}

	now := s.now()
	tickets := make([]*domain.Ticket, 0, order.TicketCount())
	events := make(map[string]struct{})
	for _, item := range order.Items {
		events[item.EventID] = struct{}{}
		for i := 0; i < item.Quantity; i++ {
			tickets = append(tickets, &domain.Ticket{
				ID:            uuid.New().String(),
				OrderID:       order.ID,
				UserID:        order.UserID,
				EventID:       item.EventID,
				EventTariffID: item.EventTariffID,
				Code:          domain.NewTicketCode(),
				CreatedAt:     now,
			})
		}
	}
	if err := s.ticketRepo.CreateBatch(ctx, tickets); err != nil {
		return nil, err
	}

	eventIDs := make([]string, 0, len(events))
	for id := range events {
		eventIDs = append(eventIDs, id)
	}
	sort.Strings(eventIDs)
	for _, id := range eventIDs {
		if err := s.eventRepo.RecomputeAvailable(ctx, id); err != nil {
			return nil, err
		}
	}

	if err := order.MarkPaid(now); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateStatus(ctx, order); err != nil {
		return nil, err
	}
	if err := s.cartRepo.ClearForUser(ctx, order.UserID); err != nil {
		return nil, err
	}
	return tickets, nil
}

// notifyPaid runs after commit; failures never undo the payment
func (s *orderService) notifyPaid(ctx context.Context, order *domain.Order, tickets []*domain.Ticket) {
	log := logger.Get().WithContext(ctx).With(zap.String("order_id", order.ID))

	user, err := s.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		log.Error("failed to load buyer for notification", zap.Error(err))
		return
	}

	evt := &domain.OrderPaidEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Email:     user.Email,
		TicketIDs: make([]string, len(tickets)),
		PaidAt:    *order.PaidAt,
	}
	for i, t := range tickets {
		evt.TicketIDs[i] = t.ID
	}
	if err := s.notifier.OrderPaid(ctx, evt); err != nil {
		log.Error("failed to dispatch order paid notification", zap.Error(err))
	}
}

func (s *orderService) ExpirePending(ctx context.Context, before time.Time, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.expire_pending")
	defer span.End()

	ids, err := s.orderRepo.ListPendingBefore(ctx, before, limit)
	if err != nil {
		return 0, err
	}

	expired, held := 0, 0
	for _, id := range ids {
		changed := false
		err := s.tx.WithTx(ctx, func(ctx context.Context) error {
			order, err := s.orderRepo.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if !order.IsPending() {
				return nil
			}
			open, err := s.paymentRepo.HasOpenPayment(ctx, id)
			if err != nil {
				return err
			}
			if open {
				held++
				return nil
			}
			if err := order.Cancel(s.now()); err != nil {
				return err
			}
			changed = true
			return s.orderRepo.UpdateStatus(ctx, order)
		})
		if err != nil {
			logger.Get().WithContext(ctx).Error("failed to expire order", zap.String("order_id", id), zap.Error(err))
			continue
		}
		if changed {
			expired++
			metrics.RecordOrderCanceled(ctx, true)
		}
	}
	span.SetAttributes(attribute.Int("expired", expired), attribute.Int("held", held))
	return expired, nil
}
