package service

import (
	"context"
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

// ApplicationService handles requests for the organizer role
type ApplicationService interface {
	Submit(ctx context.Context, userID string, req *dto.SubmitApplicationRequest) (*domain.OrganizerApplication, error)
	ListMine(ctx context.Context, userID string) ([]*domain.OrganizerApplication, error)
	List(ctx context.Context, status domain.ApplicationStatus) ([]*domain.OrganizerApplication, error)
	MarkInReview(ctx context.Context, actor domain.Actor, id string) (*domain.OrganizerApplication, error)
	// Approve grants the organizer role in the same transaction
	Approve(ctx context.Context, actor domain.Actor, id string) (*domain.OrganizerApplication, error)
	Reject(ctx context.Context, actor domain.Actor, id, comment string) (*domain.OrganizerApplication, error)
}

type applicationService struct {
	tx       repository.Transactor
	appRepo  repository.ApplicationRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewApplicationService(tx repository.Transactor, appRepo repository.ApplicationRepository, userRepo repository.UserRepository) ApplicationService {
	return &applicationService{
		tx:       tx,
		appRepo:  appRepo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (s *applicationService) Submit(ctx context.Context, userID string, req *dto.SubmitApplicationRequest) (*domain.OrganizerApplication, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.application.submit")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role.CanOrganize() {
		return nil, domain.ErrAlreadyOrganizer
	}

	now := s.now()
	app := &domain.OrganizerApplication{
		ID:               uuid.New().String(),
		UserID:           userID,
		OrganizationName: strings.TrimSpace(req.OrganizationName),
		About:            strings.TrimSpace(req.About),
		Phone:            req.Phone,
		Status:           domain.ApplicationStatusNew,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("application_id", app.ID))
	return app, nil
}

func (s *applicationService) ListMine(ctx context.Context, userID string) ([]*domain.OrganizerApplication, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.application.list_mine")
	defer span.End()

	return s.appRepo.ListByUser(ctx, userID)
}

func (s *applicationService) List(ctx context.Context, status domain.ApplicationStatus) ([]*domain.OrganizerApplication, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.application.list")
	defer span.End()

	if status != "" && !status.IsValid() {
		return nil, domain.ErrInvalidApplicationStatus
	}
	return s.appRepo.List(ctx, status)
}

func (s *applicationService) MarkInReview(ctx context.Context, actor domain.Actor, id string) (*domain.OrganizerApplication, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.application.mark_in_review")
	defer span.End()

	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.ApplicationStatusNew {
		return nil, domain.ErrInvalidApplicationStatus
	}
	app.Status = domain.ApplicationStatusInReview
	app.ReviewedBy = &actor.UserID
	app.UpdatedAt = s.now()
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *applicationService) Approve(ctx context.Context, actor domain.Actor, id string) (*domain.OrganizerApplication, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.application.approve")
	defer span.End()

	var app *domain.OrganizerApplication
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.appRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := app.Decide(domain.ApplicationStatusApproved, actor.UserID, ""); err != nil {
			return err
		}
		app.UpdatedAt = s.now()
		if err := s.appRepo.Update(ctx, app); err != nil {
			return err
		}

		user, err := s.userRepo.GetByID(ctx, app.UserID)
		if err != nil {
			return err
		}
		// staff keep their role
		if user.Role.IsStaff() {
			return nil
		}
		return s.userRepo.UpdateRole(ctx, user.ID, domain.RoleOrganizer)
	})
	if err != nil {
		return nil, err
	}

	logger.Get().WithContext(ctx).Info("organizer application approved",
		zap.String("application_id", app.ID),
		zap.String("user_id", app.UserID),
		zap.String("reviewer_id", actor.UserID),
	)
	return app, nil
}

func (s *applicationService) Reject(ctx context.Context, actor domain.Actor, id, comment string) (*domain.OrganizerApplication, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.application.reject")
	defer span.End()

	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := app.Decide(domain.ApplicationStatusRejected, actor.UserID, strings.TrimSpace(comment)); err != nil {
		return nil, err
	}
	app.UpdatedAt = s.now()
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}
