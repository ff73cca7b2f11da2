package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shiftlog/work-hour-api/internal/models"
	"github.com/shiftlog/work-hour-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCategoryNameRequired = errors.New("work category name is required")
	ErrCategoryNameTaken    = errors.New("work category name already exists")
)

// CategoryService provides business logic for work category operations.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
	}
}

// ListCategories lists work categories ordered by display order.
func (s *CategoryService) ListCategories(includeInactive bool) ([]models.WorkCategory, error) {
	categories, err := s.categoryRepo.List(includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list work categories: %w", err)
	}
	return categories, nil
}

// GetCategory retrieves a work category by ID.
func (s *CategoryService) GetCategory(id uint64) (*models.WorkCategory, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find work category: %w", err)
	}
	return category, nil
}

// CreateCategoryInput represents parameters to create a work category.
type CreateCategoryInput struct {
	Name         string
	Description  string
	DisplayOrder int
}

// CreateCategory creates a new work category.
func (s *CategoryService) CreateCategory(input CreateCategoryInput) (*models.WorkCategory, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	if err := s.ensureNameFree(name, 0); err != nil {
		return nil, err
	}

	category := &models.WorkCategory{
		Name:         name,
		Description:  input.Description,
		DisplayOrder: input.DisplayOrder,
		IsActive:     true,
	}

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create work category: %w", err)
	}

	return category, nil
}

// UpdateCategoryInput represents a partial work category update.
type UpdateCategoryInput struct {
	Name         *string
	Description  *string
	DisplayOrder *int
	IsActive     *bool
}

// UpdateCategory applies a partial update to a work category.
func (s *CategoryService) UpdateCategory(id uint64, input UpdateCategoryInput) (*models.WorkCategory, error) {
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrCategoryNameRequired
		}
		if name != category.Name {
			if err := s.ensureNameFree(name, id); err != nil {
				return nil, err
			}
		}
		category.Name = name
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.DisplayOrder != nil {
		category.DisplayOrder = *input.DisplayOrder
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, fmt.Errorf("failed to update work category: %w", err)
	}

	return category, nil
}

// DeactivateCategory soft-deletes a work category; idempotent.
func (s *CategoryService) DeactivateCategory(id uint64) (*models.WorkCategory, error) {
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	if !category.IsActive {
		return category, nil
	}

	category.IsActive = false
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, fmt.Errorf("failed to deactivate work category: %w", err)
	}

	return category, nil
}

func (s *CategoryService) ensureNameFree(name string, selfID uint64) error {
	existing, err := s.categoryRepo.FindByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check work category name: %w", err)
	}
	if existing.ID != selfID {
		return ErrCategoryNameTaken
	}
	return nil
}
