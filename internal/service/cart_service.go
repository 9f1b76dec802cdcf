package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/metrics"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// CartService manages the per-user shopping cart
type CartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, req *dto.AddCartItemRequest) (*domain.Cart, error)
	// UpdateItem sets the quantity; zero or less removes the line
	UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type cartService struct {
	cartRepo   repository.CartRepository
	tariffRepo repository.EventTariffRepository
	eventRepo  repository.EventRepository
	now        func() time.Time
}

func NewCartService(
	cartRepo repository.CartRepository,
	tariffRepo repository.EventTariffRepository,
	eventRepo repository.EventRepository,
) CartService {
	return &cartService{
		cartRepo:   cartRepo,
		tariffRepo: tariffRepo,
		eventRepo:  eventRepo,
		now:        time.Now,
	}
}

func (s *cartService) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.cart.get")
	defer span.End()

	lines, err := s.cartRepo.ListLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.Cart{Lines: lines}, nil
}

// sellableTariff loads a tariff that is active and belongs to an event on sale
func (s *cartService) sellableTariff(ctx context.Context, id string) (*domain.EventTariff, error) {
	et, err := s.tariffRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !et.IsActive {
		return nil, domain.ErrEventNotOnSale
	}
	event, err := s.eventRepo.GetByID(ctx, et.EventID)
	if err != nil {
		return nil, err
	}
	if !event.IsOnSale() {
		return nil, domain.ErrEventNotOnSale
	}
	return et, nil
}

func (s *cartService) AddItem(ctx context.Context, userID string, req *dto.AddCartItemRequest) (*domain.Cart, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.cart.add_item")
	defer span.End()

	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}
	span.SetAttributes(attribute.String("event_tariff_id", req.EventTariffID), attribute.Int("quantity", qty))

	et, err := s.sellableTariff(ctx, req.EventTariffID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.GetByTariff(ctx, userID, et.ID)
	if err != nil && !errors.Is(err, domain.ErrCartItemNotFound) {
		return nil, err
	}

	inCart := 0
	if existing != nil {
		inCart = existing.Quantity
	}
	if inCart+qty > et.Remaining() {
		metrics.RecordQuotaRejection(ctx, "cart")
		return nil, domain.ErrInsufficientQuota
	}

	if existing != nil {
		err = s.cartRepo.UpdateQuantity(ctx, existing.ID, inCart+qty)
	} else {
		err = s.cartRepo.Create(ctx, &domain.CartItem{
			ID:            uuid.New().String(),
			UserID:        userID,
			EventTariffID: et.ID,
			Quantity:      qty,
			CreatedAt:     s.now(),
		})
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *cartService) ownedItem(ctx context.Context, userID, itemID string) (*domain.CartItem, error) {
	item, err := s.cartRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, domain.ErrCartItemNotFound
	}
	return item, nil
}

func (s *cartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.cart.update_item")
	defer span.End()

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.cartRepo.Delete(ctx, item.ID); err != nil {
			return nil, err
		}
		return s.Get(ctx, userID)
	}

	et, err := s.tariffRepo.GetByID(ctx, item.EventTariffID)
	if err != nil {
		return nil, err
	}
	if quantity > et.Remaining() {
		metrics.RecordQuotaRejection(ctx, "cart")
		return nil, domain.ErrInsufficientQuota
	}
	if err := s.cartRepo.UpdateQuantity(ctx, item.ID, quantity); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.cart.remove_item")
	defer span.End()

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.Delete(ctx, item.ID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *cartService) Clear(ctx context.Context, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.cart.clear")
	defer span.End()

	return s.cartRepo.ClearForUser(ctx, userID)
}
