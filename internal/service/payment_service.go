package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/gateway"
	"github.com/railxam2004/CulT/internal/metrics"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/pkg/logger"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PaymentService connects orders with the payment gateway
type PaymentService interface {
	// Start opens a provider payment for a PENDING order. Orders that cost
	// nothing are finalized right away without contacting the provider.
	Start(ctx context.Context, actor domain.Actor, orderID string) (*dto.StartPaymentResponse, error)
	// ConfirmReturn asks the provider about the latest payment of the order.
	// Provider and finalization failures are reported in the response, never as an error.
	ConfirmReturn(ctx context.Context, actor domain.Actor, orderID string) (*dto.PaymentReturnResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	Gateway() gateway.PaymentGateway
}

type PaymentServiceConfig struct {
	ReturnURL string
}

type paymentService struct {
	tx          repository.Transactor
	gw          gateway.PaymentGateway
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	orders      OrderService
	config      *PaymentServiceConfig
	now         func() time.Time
}

func NewPaymentService(
	tx repository.Transactor,
	gw gateway.PaymentGateway,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	orders OrderService,
	config *PaymentServiceConfig,
) PaymentService {
	if config == nil {
		config = &PaymentServiceConfig{}
	}
	return &paymentService{
		tx:          tx,
		gw:          gw,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		orders:      orders,
		config:      config,
		now:         time.Now,
	}
}

func (s *paymentService) Gateway() gateway.PaymentGateway { return s.gw }

func (s *paymentService) Start(ctx context.Context, actor domain.Actor, orderID string) (*dto.StartPaymentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.start")
	defer span.End()
	span.SetAttributes(attribute.String("order_id", orderID), attribute.String("provider", s.gw.Name()))

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	if !order.IsPending() {
		return nil, domain.ErrOrderNotPending
	}
	if !order.TotalAmount.IsPositive() {
		return s.startFree(ctx, actor, order)
	}

	// The order row stays locked until the payment is recorded so that
	// expiry and cancel see it.
	var payment *gateway.Payment
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		locked, err := s.orderRepo.GetForUpdate(ctx, order.ID)
		if err != nil {
			return err
		}
		if !locked.IsPending() {
			return domain.ErrOrderNotPending
		}

		payment, err = s.gw.CreatePayment(ctx, &gateway.CreatePaymentRequest{
			OrderID:        order.ID,
			UserID:         order.UserID,
			Amount:         order.TotalAmount,
			Currency:       order.Currency,
			Description:    fmt.Sprintf("Order #%s", order.ID),
			IdempotenceKey: uuid.New().String(),
			ReturnURL:      s.config.ReturnURL,
		})
		if err != nil {
			span.RecordError(err)
			metrics.RecordPaymentFailure(ctx, s.gw.Name(), "create")
			return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
		}
		return s.record(ctx, order.ID, "payment.created", payment)
	})
	if err != nil {
		return nil, err
	}

	return &dto.StartPaymentResponse{
		OrderID:         order.ID,
		PaymentID:       payment.ID,
		Status:          payment.Status,
		ClientSecret:    payment.ClientSecret,
		ConfirmationURL: payment.ConfirmationURL,
	}, nil
}

// startFree issues tickets for a zero-total order
func (s *paymentService) startFree(ctx context.Context, actor domain.Actor, order *domain.Order) (*dto.StartPaymentResponse, error) {
	paid, err := s.orders.FinalizePayment(ctx, order.ID, &actor)
	if err != nil {
		return nil, err
	}
	if paid.Status != domain.OrderStatusPaid {
		return nil, domain.ErrOrderNotPending
	}
	return &dto.StartPaymentResponse{
		OrderID: paid.ID,
		Status:  domain.PaymentStatusSucceeded,
		Paid:    true,
	}, nil
}

func (s *paymentService) ConfirmReturn(ctx context.Context, actor domain.Actor, orderID string) (*dto.PaymentReturnResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.confirm_return")
	defer span.End()
	span.SetAttributes(attribute.String("order_id", orderID))

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID && !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if order.Status == domain.OrderStatusPaid {
		return &dto.PaymentReturnResponse{Order: order, Paid: true, Message: "Order is already paid"}, nil
	}

	log := logger.Get().WithContext(ctx).With(zap.String("order_id", orderID))

	tx, err := s.paymentRepo.GetLatestForOrder(ctx, orderID)
	if errors.Is(err, domain.ErrPaymentNotFound) {
		if !order.IsPending() {
			return &dto.PaymentReturnResponse{Order: order, Message: "Order is canceled"}, nil
		}
		return &dto.PaymentReturnResponse{Order: order, Message: "Payment was not started"}, nil
	}
	if err != nil {
		return nil, err
	}

	payment, err := s.gw.GetPayment(ctx, tx.PaymentID)
	if err != nil {
		log.Error("failed to fetch payment from provider", zap.String("payment_id", tx.PaymentID), zap.Error(err))
		metrics.RecordPaymentFailure(ctx, s.gw.Name(), "status")
		return &dto.PaymentReturnResponse{Order: order, Message: "Could not check the payment status, please try again later"}, nil
	}
	if err := s.record(ctx, orderID, "payment.return", payment); err != nil {
		log.Error("failed to record payment transaction", zap.Error(err))
	}

	if !order.IsPending() {
		if payment.Status == domain.PaymentStatusSucceeded {
			s.reportPaidCanceled(ctx, orderID, payment.ID)
			return &dto.PaymentReturnResponse{Order: order, Message: paidCanceledMessage}, nil
		}
		return &dto.PaymentReturnResponse{Order: order, Message: "Order is canceled"}, nil
	}

	switch payment.Status {
	case domain.PaymentStatusSucceeded:
	case domain.PaymentStatusPending:
		return &dto.PaymentReturnResponse{Order: order, Message: "Payment is still being processed"}, nil
	default:
		metrics.RecordPaymentFailure(ctx, s.gw.Name(), string(payment.Status))
		msg := "Payment was not completed"
		if payment.FailureMessage != "" {
			msg += ": " + payment.FailureMessage
		}
		return &dto.PaymentReturnResponse{Order: order, Message: msg}, nil
	}

	paid, err := s.orders.FinalizePayment(ctx, orderID, &actor)
	if err != nil {
		log.Error("failed to finalize paid order", zap.Error(err))
		msg := "Payment received but tickets could not be issued, please contact support"
		if errors.Is(err, domain.ErrInsufficientQuota) {
			msg = "Payment received but there are not enough tickets left, please contact support"
		}
		return &dto.PaymentReturnResponse{Order: order, Message: msg}, nil
	}
	if paid.Status != domain.OrderStatusPaid {
		s.reportPaidCanceled(ctx, orderID, payment.ID)
		return &dto.PaymentReturnResponse{Order: paid, Message: paidCanceledMessage}, nil
	}
	return &dto.PaymentReturnResponse{Order: paid, Paid: true, Message: "Payment succeeded, tickets have been issued"}, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.handle_webhook")
	defer span.End()

	evt, err := s.gw.ParseWebhook(payload, signature)
	if errors.Is(err, gateway.ErrUnsupportedEvent) {
		span.AddEvent("ignored webhook event")
		return nil
	}
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.String("event_type", evt.Type))

	payment := evt.Payment
	orderID := payment.OrderID()
	log := logger.Get().WithContext(ctx).With(
		zap.String("event_id", evt.ID),
		zap.String("event_type", evt.Type),
		zap.String("payment_id", payment.ID),
	)
	if orderID == "" {
		log.Warn("webhook payment has no order id")
		return nil
	}
	log = log.With(zap.String("order_id", orderID))
	span.SetAttributes(attribute.String("order_id", orderID))

	if err := s.record(ctx, orderID, evt.Type, payment); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			log.Warn("webhook for unknown order")
			return nil
		}
		return err
	}

	if payment.Status != domain.PaymentStatusSucceeded {
		if payment.Status.IsFinal() {
			metrics.RecordPaymentFailure(ctx, s.gw.Name(), string(payment.Status))
		}
		return nil
	}

	order, err := s.orders.FinalizePayment(ctx, orderID, nil)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientQuota) || errors.Is(err, domain.ErrOrderNotFound) {
			log.Error("paid order could not be finalized", zap.Error(err))
			return nil
		}
		return err
	}
	if order.Status == domain.OrderStatusCanceled {
		s.reportPaidCanceled(ctx, orderID, payment.ID)
	}
	return nil
}

const paidCanceledMessage = "Payment received for a canceled order, please contact support"

// reportPaidCanceled flags money captured for an order that will never get tickets
func (s *paymentService) reportPaidCanceled(ctx context.Context, orderID, paymentID string) {
	logger.Get().WithContext(ctx).Error("payment succeeded for a canceled order, refund required",
		zap.String("order_id", orderID),
		zap.String("payment_id", paymentID),
		zap.String("provider", s.gw.Name()),
	)
	metrics.RecordPaymentFailure(ctx, s.gw.Name(), "paid_canceled")
}

// record upserts the provider view of a payment
func (s *paymentService) record(ctx context.Context, orderID, event string, p *gateway.Payment) error {
	now := s.now()
	return s.paymentRepo.Upsert(ctx, &domain.PaymentTransaction{
		ID:         uuid.New().String(),
		Provider:   s.gw.Name(),
		OrderID:    orderID,
		PaymentID:  p.ID,
		Status:     p.Status,
		Event:      event,
		Amount:     p.Amount,
		Currency:   p.Currency,
		RawPayload: p.Raw,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}
