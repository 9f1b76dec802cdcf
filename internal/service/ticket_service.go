package service

import (
	"context"
	"time"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/metrics"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/internal/ticketpdf"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// TicketService serves issued tickets and handles check-in at the entrance
type TicketService interface {
	ListMine(ctx context.Context, userID string) ([]*domain.TicketDetails, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.TicketDetails, error)
	// QRCode returns the PNG image of the ticket QR payload
	QRCode(ctx context.Context, actor domain.Actor, id string) ([]byte, error)
	// PDF returns the printable ticket and its file name
	PDF(ctx context.Context, actor domain.Actor, id string) ([]byte, string, error)
	// Scan resolves a code or QR payload. With markUsed the ticket is used
	// afterwards; scanning a used ticket again is reported, not an error.
	Scan(ctx context.Context, actor domain.Actor, input string, markUsed bool) (*domain.ScanResult, error)
	SetUsed(ctx context.Context, actor domain.Actor, id string, used bool) (*domain.TicketDetails, error)
	ToggleUsed(ctx context.Context, actor domain.Actor, id string) (*domain.TicketDetails, error)
	ListForEvent(ctx context.Context, actor domain.Actor, eventID string) ([]*domain.TicketDetails, error)
}

type ticketService struct {
	ticketRepo repository.TicketRepository
	eventRepo  repository.EventRepository
	renderer   TicketRenderer
	now        func() time.Time
}

func NewTicketService(ticketRepo repository.TicketRepository, eventRepo repository.EventRepository, renderer TicketRenderer) TicketService {
	return &ticketService{
		ticketRepo: ticketRepo,
		eventRepo:  eventRepo,
		renderer:   renderer,
		now:        time.Now,
	}
}

func (s *ticketService) ListMine(ctx context.Context, userID string) ([]*domain.TicketDetails, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.list_mine")
	defer span.End()

	return s.ticketRepo.ListByUser(ctx, userID)
}

func (s *ticketService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.TicketDetails, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.get")
	defer span.End()

	t, err := s.ticketRepo.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != actor.UserID && !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	return t, nil
}

func (s *ticketService) QRCode(ctx context.Context, actor domain.Actor, id string) ([]byte, error) {
	t, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.renderer.QRCode(t.QRPayload())
}

func (s *ticketService) PDF(ctx context.Context, actor domain.Actor, id string) ([]byte, string, error) {
	t, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	data, err := s.renderer.TicketPDF(t)
	if err != nil {
		return nil, "", err
	}
	return data, ticketpdf.FileName(t), nil
}

// canCheckIn allows staff and the organizer of the ticket's event
func canCheckIn(t *domain.TicketDetails, actor domain.Actor) error {
	if actor.IsStaff() || (actor.UserID != "" && t.OrganizerID == actor.UserID) {
		return nil
	}
	return domain.ErrForbidden
}

func (s *ticketService) Scan(ctx context.Context, actor domain.Actor, input string, markUsed bool) (*domain.ScanResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.scan")
	defer span.End()

	ref, err := domain.ParseScanInput(input)
	if err != nil {
		return nil, err
	}
	t, err := s.ticketRepo.GetDetailsByCode(ctx, ref.Code)
	if err != nil {
		return nil, err
	}
	if !ref.Matches(&t.Ticket) {
		return nil, domain.ErrInvalidQRCode
	}
	if err := canCheckIn(t, actor); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("ticket_id", t.ID), attribute.Bool("mark_used", markUsed))

	result := &domain.ScanResult{Ticket: t, AlreadyUsed: t.IsUsed}
	if !markUsed || t.IsUsed {
		return result, nil
	}

	now := s.now()
	changed, err := s.ticketRepo.SetUsed(ctx, t.ID, true, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		// a concurrent scan won
		result.AlreadyUsed = true
		return result, nil
	}
	t.IsUsed = true
	t.UsedAt = &now
	result.MarkedUsed = true
	metrics.RecordCheckIn(ctx, t.EventID)
	return result, nil
}

func (s *ticketService) SetUsed(ctx context.Context, actor domain.Actor, id string, used bool) (*domain.TicketDetails, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.set_used")
	defer span.End()

	t, err := s.ticketRepo.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canCheckIn(t, actor); err != nil {
		return nil, err
	}
	return s.setUsed(ctx, t, used)
}

func (s *ticketService) ToggleUsed(ctx context.Context, actor domain.Actor, id string) (*domain.TicketDetails, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.toggle_used")
	defer span.End()

	t, err := s.ticketRepo.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canCheckIn(t, actor); err != nil {
		return nil, err
	}
	return s.setUsed(ctx, t, !t.IsUsed)
}

func (s *ticketService) setUsed(ctx context.Context, t *domain.TicketDetails, used bool) (*domain.TicketDetails, error) {
	now := s.now()
	changed, err := s.ticketRepo.SetUsed(ctx, t.ID, used, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		// another request got there first; report what is stored
		return s.ticketRepo.GetDetails(ctx, t.ID)
	}
	t.IsUsed = used
	if used {
		t.UsedAt = &now
		metrics.RecordCheckIn(ctx, t.EventID)
	} else {
		t.UsedAt = nil
	}
	return t, nil
}

func (s *ticketService) ListForEvent(ctx context.Context, actor domain.Actor, eventID string) ([]*domain.TicketDetails, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.list_for_event")
	defer span.End()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && event.OrganizerID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return s.ticketRepo.ListByEvent(ctx, eventID)
}
