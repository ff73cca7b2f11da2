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

// TeamHandler coordinates team HTTP handlers.
type TeamHandler struct {
	teamService *services.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// ListTeams returns teams, active only unless a manager or admin asks for
// the inactive ones too.
func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.teamService.ListTeams(includeInactive(c))
	if err != nil {
		respondTeamError(c, err)
		return
	}

	response.OK(c, teams)
}

// GetTeam returns one team with its member list.
func (h *TeamHandler) GetTeam(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	team, members, err := h.teamService.GetTeam(id)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	response.OK(c, dto.ToTeamDetailDTO(*team, members))
}

// CreateTeam creates a new team.
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	type CreateTeamRequest struct {
		Name        string `json:"name" binding:"required,max=100"`
		Description string `json:"description" binding:"max=500"`
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.CreateTeam(services.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	response.Created(c, team)
}

// UpdateTeam applies a partial update to a team.
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	type UpdateTeamRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"is_active"`
	}

	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.UpdateTeam(id, services.UpdateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// DeactivateTeam soft-deletes a team.
func (h *TeamHandler) DeactivateTeam(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	team, err := h.teamService.DeactivateTeam(id)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// AddMember adds a user to a team.
func (h *TeamHandler) AddMember(c *gin.Context) {
	actorID, actorRole, ok := callerIdentity(c)
	if !ok {
		return
	}

	teamID, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	type AddMemberRequest struct {
		UserID uint64          `json:"user_id" binding:"required"`
		Role   models.TeamRole `json:"role" binding:"required"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.teamService.AddMember(services.AddMemberInput{
		TeamID:    teamID,
		UserID:    req.UserID,
		Role:      req.Role,
		ActorID:   actorID,
		ActorRole: actorRole,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	response.Created(c, member)
}

// RemoveMember removes a user from a team.
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	actorID, actorRole, ok := callerIdentity(c)
	if !ok {
		return
	}

	teamID, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	if err := h.teamService.RemoveMember(teamID, userID, actorID, actorRole); err != nil {
		respondTeamError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Team member removed successfully"})
}

func respondTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrTeamMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrInvalidTeamRole),
		errors.Is(err, services.ErrMemberUserNotFound),
		errors.Is(err, services.ErrMemberUserInactive):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTeamNameTaken):
		apierrors.DuplicateName(c, err.Error())
	case errors.Is(err, services.ErrAlreadyTeamMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrNotTeamLeader):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
