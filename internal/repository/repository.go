package repository

import (
	"time"

	"github.com/shiftlog/work-hour-api/internal/models"
)

// WorkLogFilter holds filtering options for listing work logs. Empty slices
// mean "no restriction" for that dimension.
type WorkLogFilter struct {
	UserIDs     []uint64
	ProjectIDs  []uint64
	CategoryIDs []uint64
	DateFrom    *time.Time
	DateTo      *time.Time
	SearchText  string
	Page        int
	PageSize    int
}

// StatRow is the lean projection the dashboard aggregations run over.
// Display names come from LEFT JOINs so a deleted project, category or user
// yields an empty name instead of dropping the row.
type StatRow struct {
	UserID       uint64
	ProjectID    uint64
	CategoryID   uint64
	Date         time.Time
	Hours        string
	UserName     string
	ProjectName  string
	CategoryName string
}

// WorkLogRepository defines the interface for work log data access
type WorkLogRepository interface {
	// Create creates a new work log
	Create(workLog *models.WorkLog) error

	// FindByID finds a work log by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.WorkLog, error)

	// FindByIDs finds work logs for a set of IDs
	FindByIDs(ids []uint64) ([]models.WorkLog, error)

	// List retrieves work logs with filtering and pagination
	List(filter WorkLogFilter) ([]models.WorkLog, int64, error)

	// Update updates a work log
	Update(workLog *models.WorkLog) error

	// UpdateAll persists a set of work logs as a single atomic unit
	UpdateAll(workLogs []*models.WorkLog) error

	// Delete hard deletes a work log
	Delete(id uint64) error

	// CountOwnedByIDs counts how many of the given work log IDs belong to a user
	CountOwnedByIDs(ids []uint64, userID uint64) (int64, error)

	// StatRows fetches the aggregation projection for a date window
	StatRows(from, to time.Time, userIDs []uint64, projectIDs []uint64) ([]StatRow, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint64) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByResetToken(token string) (*models.User, error)
	List(includeInactive bool) ([]models.User, error)
	Update(user *models.User) error
	Count() (int64, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id uint64) (*models.Project, error)
	FindByName(name string) (*models.Project, error)
	List(includeInactive bool) ([]models.Project, error)
	Update(project *models.Project) error
}

// CategoryRepository defines the interface for work category data access
type CategoryRepository interface {
	Create(category *models.WorkCategory) error
	FindByID(id uint64) (*models.WorkCategory, error)
	FindByName(name string) (*models.WorkCategory, error)
	List(includeInactive bool) ([]models.WorkCategory, error)
	Update(category *models.WorkCategory) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Create(team *models.Team) error
	FindByID(id uint64) (*models.Team, error)
	FindByName(name string) (*models.Team, error)
	List(includeInactive bool) ([]models.Team, error)
	Update(team *models.Team) error

	// AddMember adds a member to a team
	AddMember(member *models.TeamMember) error

	// RemoveMember removes a member from a team
	RemoveMember(teamID, userID uint64) error

	// FindMember finds a specific team member
	FindMember(teamID, userID uint64) (*models.TeamMember, error)

	// ListMembers lists all members of a team
	ListMembers(teamID uint64) ([]models.TeamMember, error)

	// ListTeamsByUserID lists all memberships of a user
	ListTeamsByUserID(userID uint64) ([]models.TeamMember, error)

	// CoMemberIDs returns the distinct user IDs sharing at least one team
	// with the given user, including the user themselves.
	CoMemberIDs(userID uint64) ([]uint64, error)
}
