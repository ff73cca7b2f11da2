package repository

import (
	"github.com/shiftlog/work-hour-api/internal/database"
	"github.com/shiftlog/work-hour-api/internal/models"
	"gorm.io/gorm"
)

// GormCategoryRepository is a GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create creates a new work category
func (r *GormCategoryRepository) Create(category *models.WorkCategory) error {
	return r.db.Create(category).Error
}

// FindByID finds a work category by ID
func (r *GormCategoryRepository) FindByID(id uint64) (*models.WorkCategory, error) {
	var category models.WorkCategory
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByName finds a work category by name, active or not
func (r *GormCategoryRepository) FindByName(name string) (*models.WorkCategory, error) {
	var category models.WorkCategory
	if err := r.db.Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// List lists work categories ordered by display order
func (r *GormCategoryRepository) List(includeInactive bool) ([]models.WorkCategory, error) {
	var categories []models.WorkCategory
	query := r.db.Order("display_order ASC, name ASC")
	if !includeInactive {
		query = query.Scopes(database.ActiveOnly)
	}
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Update updates a work category
func (r *GormCategoryRepository) Update(category *models.WorkCategory) error {
	return r.db.Save(category).Error
}
