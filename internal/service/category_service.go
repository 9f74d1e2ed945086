package service

import (
	"context"
	"fmt"
	"time"

	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/rs/zerolog"
)

// categoryService implements CategoryService.
type categoryService struct {
	repo   repository.CategoryRepository
	logger zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		repo:   repo,
		logger: logger.With().Str("service", "category").Logger(),
	}
}

// GetAll retrieves all categories.
func (s *categoryService) GetAll(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// GetAllWithProducts retrieves all categories with their products.
func (s *categoryService) GetAllWithProducts(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.GetAllWithProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a category by ID.
func (s *categoryService) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// Create creates a new category.
func (s *categoryService) Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	if err := validateCategoryRequest(req); err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info().Int64("category_id", category.ID).Str("name", category.Name).Msg("category created")
	return category, nil
}

// Update rewrites an existing category.
func (s *categoryService) Update(ctx context.Context, id int64, req *model.CategoryRequest) (*model.Category, error) {
	if err := validateCategoryRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if existing == nil {
		return nil, nil
	}

	existing.Name = req.Name
	existing.Description = req.Description

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return existing, nil
}

// Delete removes a category unless products reference it.
func (s *categoryService) Delete(ctx context.Context, id int64) (bool, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to get category: %w", err)
	}
	if existing == nil {
		return false, nil
	}

	hasProducts, err := s.repo.HasProducts(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to check category products: %w", err)
	}
	if hasProducts {
		s.logger.Warn().Int64("category_id", id).Msg("delete blocked, category has products")
		return false, model.ErrCategoryHasProducts
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info().Int64("category_id", id).Msg("category deleted")
	return true, nil
}

// validateCategoryRequest validates the category payload.
func validateCategoryRequest(req *model.CategoryRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeMissingField, "category payload is required")
	}
	if req.Name == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "category name is required")
	}
	return nil
}
