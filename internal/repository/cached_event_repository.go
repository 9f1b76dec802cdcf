package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/logger"
	pkgredis "github.com/railxam2004/CulT/pkg/redis"
	"go.uber.org/zap"
)

const eventCachePrefix = "events:"

// JSONCache is the subset of the Redis client used by cached repositories
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

type cachedEventPage struct {
	Events []*domain.Event `json:"events"`
	Total  int             `json:"total"`
}

// CachedEventRepository serves published event reads from Redis.
// Any write drops every cached event key.
type CachedEventRepository struct {
	EventRepository
	cache JSONCache
	ttl   time.Duration
}

func NewCachedEventRepository(inner EventRepository, cache JSONCache, ttl time.Duration) *CachedEventRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedEventRepository{EventRepository: inner, cache: cache, ttl: ttl}
}

func (r *CachedEventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	key := eventCachePrefix + "slug:" + slug

	var cached domain.Event
	if r.get(ctx, key, &cached) {
		return &cached, nil
	}

	event, err := r.EventRepository.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if event.IsOnSale() {
		r.set(ctx, key, event)
	}
	return event, nil
}

func (r *CachedEventRepository) List(ctx context.Context, f domain.EventFilter) ([]*domain.Event, int, error) {
	if !isPublicListing(f) {
		return r.EventRepository.List(ctx, f)
	}
	key := fmt.Sprintf("%slist:%s:%d:%d", eventCachePrefix, f.CategorySlug, f.Limit, f.Offset)

	var page cachedEventPage
	if r.get(ctx, key, &page) {
		return page.Events, page.Total, nil
	}

	events, total, err := r.EventRepository.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	r.set(ctx, key, cachedEventPage{Events: events, Total: total})
	return events, total, nil
}

func (r *CachedEventRepository) Create(ctx context.Context, event *domain.Event) error {
	return r.invalidateAfter(ctx, r.EventRepository.Create(ctx, event))
}

func (r *CachedEventRepository) Update(ctx context.Context, event *domain.Event) error {
	return r.invalidateAfter(ctx, r.EventRepository.Update(ctx, event))
}

func (r *CachedEventRepository) Delete(ctx context.Context, id string) error {
	return r.invalidateAfter(ctx, r.EventRepository.Delete(ctx, id))
}

func (r *CachedEventRepository) UpdateStatus(ctx context.Context, event *domain.Event) error {
	return r.invalidateAfter(ctx, r.EventRepository.UpdateStatus(ctx, event))
}

func (r *CachedEventRepository) RecomputeAvailable(ctx context.Context, eventID string) error {
	return r.invalidateAfter(ctx, r.EventRepository.RecomputeAvailable(ctx, eventID))
}

// Invalidate drops all cached event reads
func (r *CachedEventRepository) Invalidate(ctx context.Context) {
	if _, err := r.cache.DeleteByPrefix(ctx, eventCachePrefix); err != nil {
		logger.Get().WithContext(ctx).Warn("failed to invalidate event cache", zap.Error(err))
	}
}

func (r *CachedEventRepository) invalidateAfter(ctx context.Context, err error) error {
	if err == nil {
		r.Invalidate(ctx)
	}
	return err
}

func (r *CachedEventRepository) get(ctx context.Context, key string, dest interface{}) bool {
	err := r.cache.GetJSON(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, pkgredis.ErrCacheMiss) {
		logger.Get().WithContext(ctx).Warn("event cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (r *CachedEventRepository) set(ctx context.Context, key string, value interface{}) {
	if err := r.cache.SetJSON(ctx, key, value, r.ttl); err != nil {
		logger.Get().WithContext(ctx).Warn("event cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func isPublicListing(f domain.EventFilter) bool {
	return f.OnlyActive && f.Status == domain.EventStatusPublished && f.OrganizerID == ""
}
