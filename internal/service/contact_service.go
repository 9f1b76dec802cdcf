package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/mailer"
	"github.com/railxam2004/CulT/internal/metrics"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/pkg/logger"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.uber.org/zap"
)

// ContactService stores feedback form messages
type ContactService interface {
	// Submit stores the message; the staff notification is best effort
	Submit(ctx context.Context, req *dto.ContactRequest) (*domain.ContactMessage, error)
	List(ctx context.Context, q *dto.ContactListQuery) ([]*domain.ContactMessage, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) error
}

type contactService struct {
	repo     repository.ContactRepository
	sender   mailer.Sender
	notifyTo string
	now      func() time.Time
}

// NewContactService creates the service; an empty notifyTo disables notifications
func NewContactService(repo repository.ContactRepository, sender mailer.Sender, notifyTo string) ContactService {
	return &contactService{repo: repo, sender: sender, notifyTo: notifyTo, now: time.Now}
}

func (s *contactService) Submit(ctx context.Context, req *dto.ContactRequest) (*domain.ContactMessage, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.contact.submit")
	defer span.End()

	now := s.now()
	msg := &domain.ContactMessage{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   strings.TrimSpace(req.Message),
		Status:    domain.ContactStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.sender != nil && s.notifyTo != "" {
		if err := s.sender.Send(ctx, mailer.ContactNotification(s.notifyTo, msg)); err != nil {
			metrics.RecordMailFailure(ctx, "contact")
			logger.Get().WithContext(ctx).Warn("failed to send contact notification",
				zap.String("contact_id", msg.ID),
				zap.Error(err),
			)
		}
	}
	return msg, nil
}

func (s *contactService) List(ctx context.Context, q *dto.ContactListQuery) ([]*domain.ContactMessage, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.contact.list")
	defer span.End()

	q.SetDefaults(20)
	return s.repo.List(ctx, domain.ContactStatus(q.Status), q.Limit, q.Offset())
}

func (s *contactService) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "service.contact.update_status")
	defer span.End()

	if !status.IsValid() {
		return domain.ErrInvalidContactStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
