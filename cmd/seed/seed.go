package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/internal/service"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedFile is the reference data loaded into an empty database
type SeedFile struct {
	Categories []SeedCategory `yaml:"categories"`
	Tariffs    []SeedTariff   `yaml:"tariffs"`
}

type SeedCategory struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

type SeedTariff struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// loadSeed reads path, or the built-in seed when path is empty
func loadSeed(path string) (*SeedFile, error) {
	data := defaultSeed
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	}
	return parseSeed(data)
}

func parseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, c := range seed.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("category #%d has no name", i+1)
		}
	}
	for i, t := range seed.Tariffs {
		if t.Name == "" {
			return nil, fmt.Errorf("tariff #%d has no name", i+1)
		}
	}
	return &seed, nil
}

// SeedResult counts created rows; existing rows are skipped
type SeedResult struct {
	CategoriesCreated int
	CategoriesSkipped int
	TariffsCreated    int
	TariffsSkipped    int
}

// applySeed creates the missing categories and tariffs
func applySeed(ctx context.Context, catalog service.CatalogService, seed *SeedFile) (*SeedResult, error) {
	res := &SeedResult{}
	for _, c := range seed.Categories {
		_, err := catalog.CreateCategory(ctx, &dto.CreateCategoryRequest{Name: c.Name, Slug: c.Slug})
		switch {
		case err == nil:
			res.CategoriesCreated++
		case errors.Is(err, domain.ErrCategoryExists):
			res.CategoriesSkipped++
		default:
			return res, fmt.Errorf("create category %q: %w", c.Name, err)
		}
	}
	for _, t := range seed.Tariffs {
		_, err := catalog.CreateTariff(ctx, &dto.CreateTariffRequest{Name: t.Name, Description: t.Description})
		switch {
		case err == nil:
			res.TariffsCreated++
		case errors.Is(err, domain.ErrTariffExists):
			res.TariffsSkipped++
		default:
			return res, fmt.Errorf("create tariff %q: %w", t.Name, err)
		}
	}
	return res, nil
}

// ensureAdmin registers the account if needed and promotes it to admin
func ensureAdmin(ctx context.Context, auth service.AuthService, users repository.UserRepository, req *dto.RegisterRequest) (*domain.User, bool, error) {
	created := false
	user, err := users.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		if len(req.Password) < 8 {
			return nil, false, errors.New("admin password must be at least 8 characters")
		}
		resp, regErr := auth.Register(ctx, req)
		if regErr != nil {
			return nil, false, fmt.Errorf("register admin: %w", regErr)
		}
		user, created = resp.User, true
	} else if err != nil {
		return nil, false, err
	}

	if user.Role != domain.RoleAdmin {
		if err := users.UpdateRole(ctx, user.ID, domain.RoleAdmin); err != nil {
			return nil, created, fmt.Errorf("promote admin: %w", err)
		}
		user.Role = domain.RoleAdmin
	}
	return user, created, nil
}
