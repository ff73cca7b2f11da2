package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/shiftlog/work-hour-api/internal/errors"
	"github.com/shiftlog/work-hour-api/internal/response"
	"github.com/shiftlog/work-hour-api/internal/services"
)

// CategoryHandler coordinates work category HTTP handlers.
type CategoryHandler struct {
	categoryService *services.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// ListCategories returns work categories ordered by display order. Only
// managers and admins may include the inactive ones.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(includeInactive(c))
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	response.OK(c, categories)
}

// GetCategory returns one work category by ID.
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	category, err := h.categoryService.GetCategory(id)
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	response.OK(c, category)
}

// CreateCategory creates a new work category.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	type CreateCategoryRequest struct {
		Name         string `json:"name" binding:"required,max=100"`
		Description  string `json:"description" binding:"max=500"`
		DisplayOrder int    `json:"display_order"`
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.CreateCategory(services.CreateCategoryInput{
		Name:         req.Name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	response.Created(c, category)
}

// UpdateCategory applies a partial update to a work category.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	type UpdateCategoryRequest struct {
		Name         *string `json:"name"`
		Description  *string `json:"description"`
		DisplayOrder *int    `json:"display_order"`
		IsActive     *bool   `json:"is_active"`
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.UpdateCategory(id, services.UpdateCategoryInput{
		Name:         req.Name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	response.OK(c, category)
}

// DeactivateCategory soft-deletes a work category.
func (h *CategoryHandler) DeactivateCategory(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	category, err := h.categoryService.DeactivateCategory(id)
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	response.OK(c, category)
}

func respondCategoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrCategoryNameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrCategoryNameTaken):
		apierrors.DuplicateName(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
