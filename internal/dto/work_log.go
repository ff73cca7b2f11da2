package dto

import (
	"time"

	"github.com/shiftlog/work-hour-api/internal/constants"
	"github.com/shiftlog/work-hour-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64          `json:"id"`
	Username    string          `json:"username"`
	DisplayName string          `json:"display_name"`
	Role        models.UserRole `json:"role"`
	IsActive    bool            `json:"is_active"`
}

// WorkLogDTO represents a work log in API responses. Display names of the
// joined rows ride along so list views render without extra lookups.
type WorkLogDTO struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"user_id"`
	UserName     string    `json:"user_name"`
	Date         string    `json:"date"`
	Hours        string    `json:"hours"`
	ProjectID    uint64    `json:"project_id"`
	ProjectName  string    `json:"project_name"`
	CategoryID   uint64    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Details      string    `json:"details"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		IsActive:    user.IsActive,
	}
}

// ToWorkLogDTO converts a WorkLog model to WorkLogDTO. Names of deleted or
// unloaded relations degrade to a placeholder instead of failing.
func ToWorkLogDTO(workLog models.WorkLog) WorkLogDTO {
	dto := WorkLogDTO{
		ID:         workLog.ID,
		UserID:     workLog.UserID,
		Date:       workLog.Date.Format(constants.DateFormat),
		Hours:      workLog.Hours,
		ProjectID:  workLog.ProjectID,
		CategoryID: workLog.CategoryID,
		Details:    workLog.Details,
		CreatedAt:  workLog.CreatedAt,
		UpdatedAt:  workLog.UpdatedAt,
	}

	dto.UserName = displayOrPlaceholder(workLog.User.ID, workLog.User.DisplayName)
	dto.ProjectName = displayOrPlaceholder(workLog.Project.ID, workLog.Project.Name)
	dto.CategoryName = displayOrPlaceholder(workLog.Category.ID, workLog.Category.Name)

	return dto
}

// ToWorkLogDTOs converts a slice of work logs.
func ToWorkLogDTOs(workLogs []models.WorkLog) []WorkLogDTO {
	dtos := make([]WorkLogDTO, len(workLogs))
	for i, workLog := range workLogs {
		dtos[i] = ToWorkLogDTO(workLog)
	}
	return dtos
}

func displayOrPlaceholder(id uint64, name string) string {
	if id == 0 || name == "" {
		return "(deleted)"
	}
	return name
}
