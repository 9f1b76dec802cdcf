package service

import (
	"context"
	"fmt"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/mailer"
	"github.com/railxam2004/CulT/internal/metrics"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/internal/ticketpdf"
	"github.com/railxam2004/CulT/pkg/logger"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TicketRenderer draws printable tickets; *ticketpdf.Renderer satisfies it
type TicketRenderer interface {
	QRCode(payload string) ([]byte, error)
	TicketPDF(t *domain.TicketDetails) ([]byte, error)
}

// TicketDeliveryService e-mails the PDF tickets of a paid order
type TicketDeliveryService interface {
	Deliver(ctx context.Context, evt *domain.OrderPaidEvent) error
}

type ticketDeliveryService struct {
	ticketRepo repository.TicketRepository
	renderer   TicketRenderer
	sender     mailer.Sender
}

func NewTicketDeliveryService(ticketRepo repository.TicketRepository, renderer TicketRenderer, sender mailer.Sender) TicketDeliveryService {
	return &ticketDeliveryService{
		ticketRepo: ticketRepo,
		renderer:   renderer,
		sender:     sender,
	}
}

func (s *ticketDeliveryService) Deliver(ctx context.Context, evt *domain.OrderPaidEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_delivery.deliver")
	defer span.End()
	span.SetAttributes(
		attribute.String("order_id", evt.OrderID),
		attribute.Int("tickets", len(evt.TicketIDs)),
	)

	if evt.Email == "" {
		logger.Get().WithContext(ctx).Warn("paid order has no buyer email, skipping ticket mail",
			zap.String("order_id", evt.OrderID))
		return nil
	}

	tickets, err := s.ticketRepo.ListDetails(ctx, evt.TicketIDs)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		return fmt.Errorf("%w: order %s", domain.ErrTicketNotFound, evt.OrderID)
	}

	pdfs := make([]mailer.Attachment, 0, len(tickets))
	for _, t := range tickets {
		data, err := s.renderer.TicketPDF(t)
		if err != nil {
			return fmt.Errorf("render ticket %s: %w", t.ID, err)
		}
		pdfs = append(pdfs, mailer.Attachment{
			Name:        ticketpdf.FileName(t),
			ContentType: "application/pdf",
			Data:        data,
		})
	}

	buyer := tickets[0].BuyerName
	if buyer == "" {
		buyer = evt.Email
	}
	msg := mailer.TicketsMessage(evt.Email, buyer, evt.OrderID, tickets, pdfs)
	if err := s.sender.Send(ctx, msg); err != nil {
		span.RecordError(err)
		metrics.RecordMailFailure(ctx, "tickets")
		return err
	}

	logger.Get().WithContext(ctx).Info("tickets mailed",
		zap.String("order_id", evt.OrderID),
		zap.Int("tickets", len(tickets)),
	)
	return nil
}
