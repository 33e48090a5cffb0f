package service

import (
	"context"
	"strings"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/repository"
)

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	c := &domain.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id int32) (*domain.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

func (s *categoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *categoryService) UpdateCategory(ctx context.Context, id int32, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	c := &domain.Category{ID: id, Name: name}
	if err := s.categoryRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
