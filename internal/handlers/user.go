package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shiftlog/work-hour-api/internal/dto"
	apierrors "github.com/shiftlog/work-hour-api/internal/errors"
	"github.com/shiftlog/work-hour-api/internal/models"
	"github.com/shiftlog/work-hour-api/internal/response"
	"github.com/shiftlog/work-hour-api/internal/services"
)

// UserHandler coordinates admin-facing user management handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns all accounts. Admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(includeInactive(c))
	if err != nil {
		respondUserError(c, err)
		return
	}

	dtos := make([]dto.UserDTO, len(users))
	for i, user := range users {
		dtos[i] = dto.ToUserDTO(user)
	}

	response.OK(c, dtos)
}

// CreateUser provisions an account with an explicit role. Admin only.
func (h *UserHandler) CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Username    string          `json:"username" binding:"required,min=3,max=50"`
		DisplayName string          `json:"display_name" binding:"max=100"`
		Password    string          `json:"password" binding:"required"`
		Role        models.UserRole `json:"role" binding:"required"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(services.CreateUserInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        req.Role,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	response.Created(c, dto.ToUserDTO(*user))
}

// UpdateUser applies a partial update to an account. Admin only.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actorID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	type UpdateUserRequest struct {
		DisplayName *string          `json:"display_name"`
		Role        *models.UserRole `json:"role"`
		IsActive    *bool            `json:"is_active"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(id, actorID, services.UpdateUserInput{
		DisplayName: req.DisplayName,
		Role:        req.Role,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	response.OK(c, dto.ToUserDTO(*user))
}

// DeactivateUser soft-excludes an account. Admin only.
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	actorID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.DeactivateUser(id, actorID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	response.OK(c, dto.ToUserDTO(*user))
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrUsernameRequired),
		errors.Is(err, services.ErrInvalidUserRole),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrCannotDeactivateSelf):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
