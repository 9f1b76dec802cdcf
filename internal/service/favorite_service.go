package service

import (
	"context"
	"time"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/pkg/telemetry"
)

// FavoriteService keeps the events a user follows
type FavoriteService interface {
	Add(ctx context.Context, userID, eventID string) error
	Remove(ctx context.Context, userID, eventID string) error
	List(ctx context.Context, userID string) ([]*domain.Favorite, error)
}

type favoriteService struct {
	favRepo   repository.FavoriteRepository
	eventRepo repository.EventRepository
	now       func() time.Time
}

func NewFavoriteService(favRepo repository.FavoriteRepository, eventRepo repository.EventRepository) FavoriteService {
	return &favoriteService{favRepo: favRepo, eventRepo: eventRepo, now: time.Now}
}

func (s *favoriteService) Add(ctx context.Context, userID, eventID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.favorite.add")
	defer span.End()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.Status != domain.EventStatusPublished {
		return domain.ErrEventNotFound
	}
	return s.favRepo.Add(ctx, &domain.Favorite{
		UserID:    userID,
		EventID:   eventID,
		CreatedAt: s.now(),
	})
}

func (s *favoriteService) Remove(ctx context.Context, userID, eventID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.favorite.remove")
	defer span.End()

	return s.favRepo.Remove(ctx, userID, eventID)
}

func (s *favoriteService) List(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.favorite.list")
	defer span.End()

	return s.favRepo.ListByUser(ctx, userID)
}
