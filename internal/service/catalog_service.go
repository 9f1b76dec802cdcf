package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/pkg/telemetry"
)

// CatalogService manages categories and tariffs
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*domain.Category, error)
	ListTariffs(ctx context.Context) ([]*domain.Tariff, error)
	CreateTariff(ctx context.Context, req *dto.CreateTariffRequest) (*domain.Tariff, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	tariffRepo   repository.TariffRepository
}

func NewCatalogService(categoryRepo repository.CategoryRepository, tariffRepo repository.TariffRepository) CatalogService {
	return &catalogService{categoryRepo: categoryRepo, tariffRepo: tariffRepo}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.catalog.list_categories")
	defer span.End()

	return s.categoryRepo.List(ctx)
}

func (s *catalogService) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*domain.Category, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.catalog.create_category")
	defer span.End()

	name := strings.TrimSpace(req.Name)
	slug := req.Slug
	if slug == "" {
		slug = domain.Slugify(name)
	}
	if slug == "" {
		slug = "category-" + uuid.NewString()[:8]
	}

	category := &domain.Category{
		ID:        uuid.New().String(),
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now(),
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return category, nil
}

func (s *catalogService) ListTariffs(ctx context.Context) ([]*domain.Tariff, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.catalog.list_tariffs")
	defer span.End()

	return s.tariffRepo.List(ctx)
}

func (s *catalogService) CreateTariff(ctx context.Context, req *dto.CreateTariffRequest) (*domain.Tariff, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.catalog.create_tariff")
	defer span.End()

	tariff := &domain.Tariff{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   time.Now(),
	}
	if err := s.tariffRepo.Create(ctx, tariff); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return tariff, nil
}
