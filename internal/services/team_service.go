package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shiftlog/work-hour-api/internal/models"
	"github.com/shiftlog/work-hour-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTeamNameRequired   = errors.New("team name is required")
	ErrTeamNameTaken      = errors.New("team name already exists")
	ErrInvalidTeamRole    = errors.New("team role must be one of leader, member, viewer")
	ErrAlreadyTeamMember  = errors.New("user is already a member of this team")
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrNotTeamLeader      = errors.New("only a team leader or admin can manage members")
	ErrMemberUserNotFound = errors.New("user to add does not exist")
	ErrMemberUserInactive = errors.New("user to add is deactivated")
)

// TeamService provides business logic for team operations.
type TeamService struct {
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
	}
}

// ListTeams lists teams.
func (s *TeamService) ListTeams(includeInactive bool) ([]models.Team, error) {
	teams, err := s.teamRepo.List(includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// GetTeam retrieves a team with its members.
func (s *TeamService) GetTeam(id uint64) (*models.Team, []models.TeamMember, error) {
	team, err := s.teamRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, fmt.Errorf("failed to find team: %w", err)
	}

	members, err := s.teamRepo.ListMembers(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list team members: %w", err)
	}

	return team, members, nil
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	Name        string
	Description string
}

// CreateTeam creates a new team.
func (s *TeamService) CreateTeam(input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	if err := s.ensureNameFree(name, 0); err != nil {
		return nil, err
	}

	team := &models.Team{
		Name:        name,
		Description: input.Description,
		IsActive:    true,
	}

	if err := s.teamRepo.Create(team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return team, nil
}

// UpdateTeamInput represents a partial team update.
type UpdateTeamInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// UpdateTeam applies a partial update to a team.
func (s *TeamService) UpdateTeam(id uint64, input UpdateTeamInput) (*models.Team, error) {
	team, _, err := s.GetTeam(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		if name != team.Name {
			if err := s.ensureNameFree(name, id); err != nil {
				return nil, err
			}
		}
		team.Name = name
	}
	if input.Description != nil {
		team.Description = *input.Description
	}
	if input.IsActive != nil {
		team.IsActive = *input.IsActive
	}

	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	return team, nil
}

// DeactivateTeam soft-deletes a team; idempotent.
func (s *TeamService) DeactivateTeam(id uint64) (*models.Team, error) {
	team, _, err := s.GetTeam(id)
	if err != nil {
		return nil, err
	}

	if !team.IsActive {
		return team, nil
	}

	team.IsActive = false
	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to deactivate team: %w", err)
	}

	return team, nil
}

// AddMemberInput represents parameters to add a team member.
type AddMemberInput struct {
	TeamID     uint64
	UserID     uint64
	Role       models.TeamRole
	ActorID    uint64
	ActorRole  models.UserRole
}

// AddMember adds a user to a team. The actor must be an admin or the
// team's leader.
func (s *TeamService) AddMember(input AddMemberInput) (*models.TeamMember, error) {
	if !models.ValidTeamRole(input.Role) {
		return nil, ErrInvalidTeamRole
	}

	if _, _, err := s.GetTeam(input.TeamID); err != nil {
		return nil, err
	}

	if err := s.ensureCanManageMembers(input.TeamID, input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrMemberUserInactive
	}

	if _, err := s.teamRepo.FindMember(input.TeamID, input.UserID); err == nil {
		return nil, ErrAlreadyTeamMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	member := &models.TeamMember{
		TeamID:   input.TeamID,
		UserID:   input.UserID,
		Role:     input.Role,
		JoinedAt: time.Now(),
	}

	if err := s.teamRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}

	return member, nil
}

// RemoveMember removes a user from a team. Removal is a hard delete; the
// membership row carries no history worth keeping.
func (s *TeamService) RemoveMember(teamID, userID, actorID uint64, actorRole models.UserRole) error {
	if _, _, err := s.GetTeam(teamID); err != nil {
		return err
	}

	if err := s.ensureCanManageMembers(teamID, actorID, actorRole); err != nil {
		return err
	}

	if _, err := s.teamRepo.FindMember(teamID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamMemberNotFound
		}
		return fmt.Errorf("failed to check membership: %w", err)
	}

	if err := s.teamRepo.RemoveMember(teamID, userID); err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}

	return nil
}

func (s *TeamService) ensureCanManageMembers(teamID, actorID uint64, actorRole models.UserRole) error {
	if models.HasRole(actorRole, models.RoleAdmin) {
		return nil
	}

	member, err := s.teamRepo.FindMember(teamID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotTeamLeader
		}
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if member.Role != models.TeamRoleLeader {
		return ErrNotTeamLeader
	}

	return nil
}

func (s *TeamService) ensureNameFree(name string, selfID uint64) error {
	existing, err := s.teamRepo.FindByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check team name: %w", err)
	}
	if existing.ID != selfID {
		return ErrTeamNameTaken
	}
	return nil
}
