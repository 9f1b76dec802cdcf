package service

import (
	"context"
	"time"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// DashboardService builds sales statistics. Staff see every event,
// organizers only their own.
type DashboardService interface {
	Get(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error)
}

type dashboardService struct {
	repo repository.DashboardRepository
	now  func() time.Time
}

func NewDashboardService(repo repository.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo, now: time.Now}
}

func (s *dashboardService) Get(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.dashboard.get")
	defer span.End()

	var scope domain.DashboardScope
	switch {
	case actor.IsStaff():
	case actor.Role == domain.RoleOrganizer:
		scope.OrganizerID = actor.UserID
	default:
		return nil, domain.ErrForbidden
	}
	span.SetAttributes(attribute.String("organizer_id", scope.OrganizerID))

	summary, err := s.repo.Summary(ctx, scope)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(domain.DashboardDays - 1))
	daily, err := s.repo.DailySales(ctx, scope, from)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.TopCategories(ctx, scope, domain.DashboardTopCategories)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.TopEvents(ctx, scope, domain.DashboardTopEvents)
	if err != nil {
		return nil, err
	}

	return &domain.Dashboard{
		Summary:       *summary,
		Daily:         domain.FillDays(from, domain.DashboardDays, daily),
		TopCategories: categories,
		TopEvents:     events,
	}, nil
}
