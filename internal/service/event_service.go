package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/pkg/logger"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// EventService covers the public catalog, the organizer cabinet and moderation
type EventService interface {
	ListPublished(ctx context.Context, q *dto.PublicEventQuery) ([]*domain.Event, int, error)
	GetBySlug(ctx context.Context, slug string, actor domain.Actor) (*domain.Event, error)
	GetByID(ctx context.Context, id string, actor domain.Actor) (*domain.Event, error)

	Create(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error)
	Update(ctx context.Context, actor domain.Actor, id string, req *dto.UpdateEventRequest) (*domain.Event, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	ListMine(ctx context.Context, actor domain.Actor, q *dto.PageQuery) ([]*domain.Event, int, error)
	Submit(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error)

	AddTariff(ctx context.Context, actor domain.Actor, eventID string, req *dto.AddEventTariffRequest) (*domain.EventTariff, error)
	UpdateTariff(ctx context.Context, actor domain.Actor, eventTariffID string, req *dto.UpdateEventTariffRequest) (*domain.EventTariff, error)
	RemoveTariff(ctx context.Context, actor domain.Actor, eventTariffID string) error

	ListForModeration(ctx context.Context, q *dto.ModerationQuery) ([]*domain.Event, int, error)
	Publish(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error)
	Reject(ctx context.Context, actor domain.Actor, id, comment string) (*domain.Event, error)
	MarkDraft(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error)
	MarkPending(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error)
}

type EventServiceConfig struct {
	PageSize int
}

type eventService struct {
	tx           repository.Transactor
	eventRepo    repository.EventRepository
	tariffRepo   repository.EventTariffRepository
	categoryRepo repository.CategoryRepository
	catalogRepo  repository.TariffRepository
	config       *EventServiceConfig
	now          func() time.Time
}

func NewEventService(
	tx repository.Transactor,
	eventRepo repository.EventRepository,
	tariffRepo repository.EventTariffRepository,
	categoryRepo repository.CategoryRepository,
	catalogRepo repository.TariffRepository,
	config *EventServiceConfig,
) EventService {
	if config == nil {
		config = &EventServiceConfig{}
	}
	if config.PageSize <= 0 {
		config.PageSize = dto.PublicPageSize
	}
	return &eventService{
		tx:           tx,
		eventRepo:    eventRepo,
		tariffRepo:   tariffRepo,
		categoryRepo: categoryRepo,
		catalogRepo:  catalogRepo,
		config:       config,
		now:          time.Now,
	}
}

func (s *eventService) ListPublished(ctx context.Context, q *dto.PublicEventQuery) ([]*domain.Event, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list_published")
	defer span.End()

	q.PageQuery.Limit = s.config.PageSize
	q.SetDefaults(s.config.PageSize)

	events, total, err := s.eventRepo.List(ctx, domain.EventFilter{
		CategorySlug: q.Category,
		Status:       domain.EventStatusPublished,
		OnlyActive:   true,
		Limit:        q.Limit,
		Offset:       q.Offset(),
	})
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachTariffs(ctx, events, true); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *eventService) GetBySlug(ctx context.Context, slug string, actor domain.Actor) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get_by_slug")
	defer span.End()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, event, actor, true)
}

func (s *eventService) GetByID(ctx context.Context, id string, actor domain.Actor) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get_by_id")
	defer span.End()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, event, actor, false)
}

// present hides unpublished events from strangers and counts public views
func (s *eventService) present(ctx context.Context, event *domain.Event, actor domain.Actor, countView bool) (*domain.Event, error) {
	if !event.VisibleTo(actor) {
		return nil, domain.ErrEventNotFound
	}

	manager := actor.IsStaff() || actor.UserID == event.OrganizerID
	if countView && event.IsOnSale() && !manager {
		if err := s.eventRepo.IncrementViews(ctx, event.ID); err != nil {
			logger.Get().WithContext(ctx).Warn("failed to count event view",
				zap.String("event_id", event.ID), zap.Error(err))
		} else {
			event.ViewsCount++
		}
	}

	if err := s.attachTariffs(ctx, []*domain.Event{event}, !manager); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) attachTariffs(ctx context.Context, events []*domain.Event, onlyActive bool) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	byEvent, err := s.tariffRepo.ListByEvents(ctx, ids)
	if err != nil {
		return err
	}
	for _, e := range events {
		e.Tariffs = e.Tariffs[:0]
		for _, t := range byEvent[e.ID] {
			if onlyActive && !t.IsActive {
				continue
			}
			e.Tariffs = append(e.Tariffs, t)
		}
	}
	return nil
}

func (s *eventService) Create(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	if !actor.Role.CanOrganize() {
		return nil, domain.ErrForbidden
	}
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, req.Title)
	if err != nil {
		return nil, err
	}

	now := s.now()
	event := &domain.Event{
		ID:              uuid.New().String(),
		Title:           strings.TrimSpace(req.Title),
		Slug:            slug,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		OrganizerID:     actor.UserID,
		StartsAt:        req.StartsAt,
		DurationMinutes: req.DurationMinutes,
		Location:        strings.TrimSpace(req.Location),
		Capacity:        req.Capacity,
		IsActive:        req.IsActive == nil || *req.IsActive,
		Status:          domain.EventStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("event_id", event.ID))
	return event, nil
}

func (s *eventService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := domain.Slugify(title)
	if base == "" {
		base = "event"
	}
	slug := base
	for i := 2; i <= 20; i++ {
		exists, err := s.eventRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func (s *eventService) Update(ctx context.Context, actor domain.Actor, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := event.CanEdit(actor); err != nil {
		return nil, err
	}

	if req.CategoryID != nil && *req.CategoryID != event.CategoryID {
		if _, err := s.categoryRepo.GetByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		event.CategoryID = *req.CategoryID
	}
	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.DurationMinutes != nil {
		event.DurationMinutes = *req.DurationMinutes
	}
	if req.Location != nil {
		event.Location = strings.TrimSpace(*req.Location)
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}
	event.UpdatedAt = s.now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete")
	defer span.End()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsStaff() && actor.UserID != event.OrganizerID {
		return domain.ErrForbidden
	}
	if event.Status != domain.EventStatusDraft {
		return domain.ErrEventNotDeletable
	}
	return s.eventRepo.Delete(ctx, id)
}

func (s *eventService) ListMine(ctx context.Context, actor domain.Actor, q *dto.PageQuery) ([]*domain.Event, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list_mine")
	defer span.End()

	if !actor.Role.CanOrganize() {
		return nil, 0, domain.ErrForbidden
	}
	q.SetDefaults(0)
	events, total, err := s.eventRepo.List(ctx, domain.EventFilter{
		OrganizerID: actor.UserID,
		Limit:       q.Limit,
		Offset:      q.Offset(),
	})
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachTariffs(ctx, events, false); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *eventService) Submit(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.submit")
	defer span.End()

	event, err := s.eventWithTariffs(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := event.CanEdit(actor); err != nil {
		return nil, err
	}
	if err := event.CanSubmit(); err != nil {
		return nil, err
	}
	if !event.HasSellableTariff() {
		return nil, domain.ErrNoSellableTariff
	}

	event.Status = domain.EventStatusPending
	return event, s.saveStatus(ctx, event)
}

func (s *eventService) eventWithTariffs(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tariffs, err := s.tariffRepo.ListByEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Tariffs = tariffs
	return event, nil
}

func (s *eventService) saveStatus(ctx context.Context, event *domain.Event) error {
	event.UpdatedAt = s.now()
	return s.eventRepo.UpdateStatus(ctx, event)
}

// canManageTariffs lets staff change tariffs of published events too
func canManageTariffs(event *domain.Event, actor domain.Actor) error {
	if actor.IsStaff() {
		return nil
	}
	return event.CanEdit(actor)
}

func (s *eventService) AddTariff(ctx context.Context, actor domain.Actor, eventID string, req *dto.AddEventTariffRequest) (*domain.EventTariff, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.add_tariff")
	defer span.End()

	if req.Price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	if req.AvailableQuantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := canManageTariffs(event, actor); err != nil {
		return nil, err
	}
	tariff, err := s.catalogRepo.GetByID(ctx, req.TariffID)
	if err != nil {
		return nil, err
	}

	et := &domain.EventTariff{
		ID:                uuid.New().String(),
		EventID:           eventID,
		TariffID:          tariff.ID,
		TariffName:        tariff.Name,
		Price:             req.Price.Round(2),
		AvailableQuantity: req.AvailableQuantity,
		IsActive:          req.IsActive == nil || *req.IsActive,
		CreatedAt:         s.now(),
	}
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.tariffRepo.Create(ctx, et); err != nil {
			return err
		}
		return s.eventRepo.RecomputeAvailable(ctx, eventID)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.invalidate(ctx)
	return et, nil
}

func (s *eventService) UpdateTariff(ctx context.Context, actor domain.Actor, eventTariffID string, req *dto.UpdateEventTariffRequest) (*domain.EventTariff, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update_tariff")
	defer span.End()

	et, err := s.tariffRepo.GetByID(ctx, eventTariffID)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, et.EventID)
	if err != nil {
		return nil, err
	}
	if err := canManageTariffs(event, actor); err != nil {
		return nil, err
	}

	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, domain.ErrInvalidPrice
		}
		et.Price = req.Price.Round(2)
	}
	if req.AvailableQuantity != nil {
		if *req.AvailableQuantity < et.SalesCount {
			return nil, domain.ErrQuantityBelowSales
		}
		et.AvailableQuantity = *req.AvailableQuantity
	}
	if req.IsActive != nil {
		et.IsActive = *req.IsActive
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.tariffRepo.Update(ctx, et); err != nil {
			return err
		}
		return s.eventRepo.RecomputeAvailable(ctx, et.EventID)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.invalidate(ctx)
	return et, nil
}

func (s *eventService) RemoveTariff(ctx context.Context, actor domain.Actor, eventTariffID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.remove_tariff")
	defer span.End()

	et, err := s.tariffRepo.GetByID(ctx, eventTariffID)
	if err != nil {
		return err
	}
	event, err := s.eventRepo.GetByID(ctx, et.EventID)
	if err != nil {
		return err
	}
	if err := canManageTariffs(event, actor); err != nil {
		return err
	}
	if et.SalesCount > 0 {
		return domain.ErrEventTariffHasSales
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.tariffRepo.Delete(ctx, et.ID); err != nil {
			return err
		}
		return s.eventRepo.RecomputeAvailable(ctx, et.EventID)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *eventService) ListForModeration(ctx context.Context, q *dto.ModerationQuery) ([]*domain.Event, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list_for_moderation")
	defer span.End()

	q.SetDefaults(0)
	status := domain.EventStatus(q.Status)
	if status == "" {
		status = domain.EventStatusPending
	}
	if !status.IsValid() {
		return nil, 0, domain.ErrInvalidEventTransition
	}

	events, total, err := s.eventRepo.List(ctx, domain.EventFilter{
		Status: status,
		Limit:  q.Limit,
		Offset: q.Offset(),
	})
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachTariffs(ctx, events, false); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *eventService) Publish(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.publish")
	defer span.End()

	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	event, err := s.eventWithTariffs(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := event.CanPublish(); err != nil {
		return nil, err
	}
	if !event.HasSellableTariff() {
		return nil, domain.ErrNoSellableTariff
	}

	now := s.now()
	event.Status = domain.EventStatusPublished
	event.PublishedAt = &now
	event.ModeratedBy = &actor.UserID
	event.ModerationComment = ""
	if err := s.saveStatus(ctx, event); err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Get().WithContext(ctx).Info("event published",
		zap.String("event_id", event.ID), zap.String("moderator_id", actor.UserID))
	return event, nil
}

func (s *eventService) Reject(ctx context.Context, actor domain.Actor, id, comment string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.reject")
	defer span.End()

	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := event.CanReject(); err != nil {
		return nil, err
	}

	event.Status = domain.EventStatusRejected
	event.ModeratedBy = &actor.UserID
	event.ModerationComment = strings.TrimSpace(comment)
	return event, s.saveStatus(ctx, event)
}

func (s *eventService) MarkDraft(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.mark_draft")
	defer span.End()

	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status == domain.EventStatusDraft {
		return nil, domain.ErrInvalidEventTransition
	}

	event.Status = domain.EventStatusDraft
	event.ModeratedBy = &actor.UserID
	return event, s.saveStatus(ctx, event)
}

func (s *eventService) MarkPending(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.mark_pending")
	defer span.End()

	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := event.CanSubmit(); err != nil {
		return nil, err
	}

	event.Status = domain.EventStatusPending
	event.ModeratedBy = &actor.UserID
	return event, s.saveStatus(ctx, event)
}

// invalidate drops cached event reads once a transaction has committed
func (s *eventService) invalidate(ctx context.Context) {
	invalidateEvents(ctx, s.eventRepo)
}

func invalidateEvents(ctx context.Context, repo repository.EventRepository) {
	if inv, ok := repo.(repository.CacheInvalidator); ok {
		inv.Invalidate(ctx)
	}
}
