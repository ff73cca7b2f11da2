package repository

import (
	"github.com/shiftlog/work-hour-api/internal/database"
	"github.com/shiftlog/work-hour-api/internal/models"
	"gorm.io/gorm"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a new team
func (r *GormTeamRepository) Create(team *models.Team) error {
	return r.db.Create(team).Error
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByName finds a team by name, active or not
func (r *GormTeamRepository) FindByName(name string) (*models.Team, error) {
	var team models.Team
	if err := r.db.Where("name = ?", name).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// List lists teams, optionally including soft-deleted ones
func (r *GormTeamRepository) List(includeInactive bool) ([]models.Team, error) {
	var teams []models.Team
	query := r.db.Order("name ASC")
	if !includeInactive {
		query = query.Scopes(database.ActiveOnly)
	}
	if err := query.Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(team *models.Team) error {
	return r.db.Save(team).Error
}

// AddMember adds a member to a team
func (r *GormTeamRepository) AddMember(member *models.TeamMember) error {
	return r.db.Create(member).Error
}

// RemoveMember removes a member from a team
func (r *GormTeamRepository) RemoveMember(teamID, userID uint64) error {
	return r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{}).Error
}

// FindMember finds a specific team member
func (r *GormTeamRepository) FindMember(teamID, userID uint64) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a team
func (r *GormTeamRepository) ListMembers(teamID uint64) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := r.db.Preload("User").
		Where("team_id = ?", teamID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListTeamsByUserID lists all memberships of a user
func (r *GormTeamRepository) ListTeamsByUserID(userID uint64) ([]models.TeamMember, error) {
	var memberships []models.TeamMember
	if err := r.db.Preload("Team").
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// CoMemberIDs returns the distinct user IDs sharing at least one team with
// the given user, including the user themselves.
func (r *GormTeamRepository) CoMemberIDs(userID uint64) ([]uint64, error) {
	var ids []uint64
	subQuery := r.db.Model(&models.TeamMember{}).
		Select("team_id").
		Where("user_id = ?", userID)

	err := r.db.Model(&models.TeamMember{}).
		Distinct("user_id").
		Where("team_id IN (?)", subQuery).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}

	// A user outside any team still sees their own logs under team scope.
	found := false
	for _, id := range ids {
		if id == userID {
			found = true
			break
		}
	}
	if !found {
		ids = append(ids, userID)
	}

	return ids, nil
}
