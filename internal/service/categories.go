package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
	"github.com/Scharxi/tasmo-admin-sub001/internal/repository"
)

// CategoryParams carries the editable category fields.
type CategoryParams struct {
	Name  string
	Color string
	Icon  string
}

type CategoryService struct {
	categoryRepo repository.CategoryRepo
}

func NewCategoryService(categoryRepo repository.CategoryRepo) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *CategoryService) Create(ctx context.Context, p CategoryParams) (*models.Category, error) {
	name, err := validCategoryName(p.Name)
	if err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("category %q: %w", name, ErrConflict)
	}

	c := models.Category{
		ID:    uuid.NewString(),
		Name:  name,
		Color: p.Color,
		Icon:  p.Icon,
	}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, p CategoryParams) (*models.Category, error) {
	name, err := validCategoryName(p.Name)
	if err != nil {
		return nil, err
	}

	c, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("category %q: %w", id, ErrNotFound)
	}

	// Renaming onto another category's name is a conflict.
	if name != c.Name {
		other, err := s.categoryRepo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, fmt.Errorf("category %q: %w", name, ErrConflict)
		}
	}

	c.Name = name
	c.Color = p.Color
	c.Icon = p.Icon
	if err := s.categoryRepo.Update(ctx, *c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a category. Devices keep existing; their category_id is
// detached by the schema's ON DELETE SET NULL.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	c, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("category %q: %w", id, ErrNotFound)
	}
	return s.categoryRepo.Delete(ctx, id)
}

func validCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	return name, nil
}
