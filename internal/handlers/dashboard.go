package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/shiftlog/work-hour-api/internal/errors"
	"github.com/shiftlog/work-hour-api/internal/response"
	"github.com/shiftlog/work-hour-api/internal/services"
)

// DashboardHandler coordinates dashboard HTTP handlers.
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

func parsePeriodInput(c *gin.Context) (services.StatsPeriodInput, error) {
	input := services.StatsPeriodInput{
		Period: c.Query("period"),
	}

	var err error
	if input.StartDate, err = parseDateQuery(c, "start_date"); err != nil {
		return input, err
	}
	if input.EndDate, err = parseDateQuery(c, "end_date"); err != nil {
		return input, err
	}

	return input, nil
}

// PersonalStats returns the caller's own dashboard.
func (h *DashboardHandler) PersonalStats(c *gin.Context) {
	userID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	input, err := parsePeriodInput(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	stats, err := h.dashboardService.PersonalStats(c.Request.Context(), userID, input)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	response.OK(c, stats)
}

// TeamStats returns aggregated stats over a team's members.
func (h *DashboardHandler) TeamStats(c *gin.Context) {
	userID, role, ok := callerIdentity(c)
	if !ok {
		return
	}

	teamID, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	input, err := parsePeriodInput(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	stats, err := h.dashboardService.TeamStats(c.Request.Context(), userID, role, teamID, input)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	response.OK(c, stats)
}

// ProjectStats returns org-wide stats, optionally narrowed to projects.
func (h *DashboardHandler) ProjectStats(c *gin.Context) {
	input, err := parsePeriodInput(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	projectIDs, err := parseIDFilter(c, "project_ids", "project_id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	stats, err := h.dashboardService.ProjectStats(c.Request.Context(), projectIDs, input)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	response.OK(c, stats)
}

func respondDashboardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidPeriod),
		errors.Is(err, services.ErrCustomPeriodBounds),
		errors.Is(err, services.ErrPeriodTooLong),
		errors.Is(err, services.ErrInvalidDateRange):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTeamNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTeamMember):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
