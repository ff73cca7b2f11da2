package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shiftlog/work-hour-api/internal/constants"
	"github.com/shiftlog/work-hour-api/internal/dto"
	apierrors "github.com/shiftlog/work-hour-api/internal/errors"
	"github.com/shiftlog/work-hour-api/internal/middleware"
	"github.com/shiftlog/work-hour-api/internal/models"
	"github.com/shiftlog/work-hour-api/internal/response"
	"github.com/shiftlog/work-hour-api/internal/services"
	"github.com/shiftlog/work-hour-api/internal/utils"
)

// WorkLogHandler coordinates work-log HTTP handlers.
type WorkLogHandler struct {
	workLogService *services.WorkLogService
}

// NewWorkLogHandler creates a new WorkLogHandler.
func NewWorkLogHandler(workLogService *services.WorkLogService) *WorkLogHandler {
	return &WorkLogHandler{
		workLogService: workLogService,
	}
}

// ListWorkLogs returns a filtered, paginated list of work logs.
func (h *WorkLogHandler) ListWorkLogs(c *gin.Context) {
	userID, role, ok := callerIdentity(c)
	if !ok {
		return
	}

	params, err := utils.GetPaginationParams(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	input := services.ListWorkLogsInput{
		CallerID:   userID,
		CallerRole: role,
		Page:       params.Page,
		Limit:      params.Limit,
		SearchText: c.Query("search"),
		Scope:      c.Query("scope"),
	}

	if input.StartDate, err = parseDateQuery(c, "start_date"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.EndDate, err = parseDateQuery(c, "end_date"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	// Multi-value filters take precedence over their single-value forms.
	if input.ProjectIDs, err = parseIDFilter(c, "project_ids", "project_id"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.CategoryIDs, err = parseIDFilter(c, "category_ids", "category_id"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "user_id must be a positive integer")
			return
		}
		input.UserID = &id
	}

	workLogs, total, err := h.workLogService.ListWorkLogs(input)
	if err != nil {
		respondWorkLogError(c, err)
		return
	}

	response.Paginated(c, dto.ToWorkLogDTOs(workLogs), utils.NewPaginationResponse(params, total))
}

// GetWorkLog returns one work log by ID.
func (h *WorkLogHandler) GetWorkLog(c *gin.Context) {
	userID, role, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	workLog, err := h.workLogService.GetWorkLog(id, userID, role)
	if err != nil {
		respondWorkLogError(c, err)
		return
	}

	response.OK(c, dto.ToWorkLogDTO(*workLog))
}

// CreateWorkLog creates a new work log owned by the caller.
func (h *WorkLogHandler) CreateWorkLog(c *gin.Context) {
	userID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	type CreateWorkLogRequest struct {
		Date       string `json:"date" binding:"required"`
		Hours      string `json:"hours" binding:"required"`
		ProjectID  uint64 `json:"project_id" binding:"required"`
		CategoryID uint64 `json:"category_id" binding:"required"`
		Details    string `json:"details"`
	}

	var req CreateWorkLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	date, err := time.Parse(constants.DateFormat, req.Date)
	if err != nil {
		apierrors.BadRequest(c, "date must be formatted YYYY-MM-DD")
		return
	}

	workLog, err := h.workLogService.CreateWorkLog(c.Request.Context(), services.CreateWorkLogInput{
		UserID:     userID,
		Date:       date,
		Hours:      req.Hours,
		ProjectID:  req.ProjectID,
		CategoryID: req.CategoryID,
		Details:    req.Details,
	})
	if err != nil {
		respondWorkLogError(c, err)
		return
	}

	response.Created(c, dto.ToWorkLogDTO(*workLog))
}

// workLogUpdateRequest is the wire shape of a partial work-log update,
// shared by the single and batch endpoints.
type workLogUpdateRequest struct {
	Date       *string `json:"date"`
	Hours      *string `json:"hours"`
	ProjectID  *uint64 `json:"project_id"`
	CategoryID *uint64 `json:"category_id"`
	Details    *string `json:"details"`
}

func (req workLogUpdateRequest) toInput() (services.UpdateWorkLogInput, error) {
	input := services.UpdateWorkLogInput{
		Hours:      req.Hours,
		ProjectID:  req.ProjectID,
		CategoryID: req.CategoryID,
		Details:    req.Details,
	}

	if req.Date != nil {
		date, err := time.Parse(constants.DateFormat, *req.Date)
		if err != nil {
			return input, errors.New("date must be formatted YYYY-MM-DD")
		}
		input.Date = &date
	}

	return input, nil
}

// UpdateWorkLog applies a partial update to one work log.
func (h *WorkLogHandler) UpdateWorkLog(c *gin.Context) {
	userID, role, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	var req workLogUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := req.toInput()
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	workLog, err := h.workLogService.UpdateWorkLog(c.Request.Context(), id, userID, role, input)
	if err != nil {
		respondWorkLogError(c, err)
		return
	}

	response.OK(c, dto.ToWorkLogDTO(*workLog))
}

// DeleteWorkLog removes one work log.
func (h *WorkLogHandler) DeleteWorkLog(c *gin.Context) {
	userID, role, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	if err := h.workLogService.DeleteWorkLog(c.Request.Context(), id, userID, role); err != nil {
		respondWorkLogError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Work log deleted successfully"})
}

// BatchUpdateWorkLogs applies a list of partial updates atomically.
func (h *WorkLogHandler) BatchUpdateWorkLogs(c *gin.Context) {
	userID, role, ok := callerIdentity(c)
	if !ok {
		return
	}

	type BatchEntryRequest struct {
		ID   uint64               `json:"id" binding:"required"`
		Data workLogUpdateRequest `json:"data"`
	}
	type BatchUpdateRequest struct {
		Updates []BatchEntryRequest `json:"updates" binding:"required"`
	}

	var req BatchUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	entries := make([]services.BatchUpdateEntry, 0, len(req.Updates))
	for _, update := range req.Updates {
		input, err := update.Data.toInput()
		if err != nil {
			apierrors.BadRequest(c, err.Error())
			return
		}
		entries = append(entries, services.BatchUpdateEntry{
			ID:   update.ID,
			Data: input,
		})
	}

	workLogs, err := h.workLogService.BatchUpdateWorkLogs(c.Request.Context(), userID, role, entries)
	if err != nil {
		respondWorkLogError(c, err)
		return
	}

	response.OK(c, dto.ToWorkLogDTOs(workLogs))
}

// callerIdentity pulls the authenticated identity out of the context,
// answering 401 itself when the gate did not run.
func callerIdentity(c *gin.Context) (uint64, models.UserRole, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, "", false
	}
	role, exists := middleware.GetUserRole(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, "", false
	}
	return userID, role, true
}

// includeInactive reports whether the caller asked for soft-deleted rows
// and holds a role allowed to see them.
func includeInactive(c *gin.Context) bool {
	if c.Query("include_inactive") != "true" {
		return false
	}
	role, ok := middleware.GetUserRole(c)
	return ok && models.HasRole(role, models.RoleManager)
}

func parseIDParam(c *gin.Context) (uint64, error) {
	return parseUintParam(c, "id")
}

func parseUintParam(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return id, nil
}

func parseDateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse(constants.DateFormat, raw)
	if err != nil {
		return nil, errors.New(key + " must be formatted YYYY-MM-DD")
	}
	return &date, nil
}

// parseIDFilter reads a comma-separated multi-value filter, falling back to
// the single-value key when the multi key is absent.
func parseIDFilter(c *gin.Context, multiKey, singleKey string) ([]uint64, error) {
	raw := c.Query(multiKey)
	if raw == "" {
		raw = c.Query(singleKey)
	}
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.New(multiKey + " must be a comma-separated list of positive integers")
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func respondWorkLogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrWorkLogNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotWorkLogOwner),
		errors.Is(err, services.ErrScopeForbidden),
		errors.Is(err, services.ErrBatchNotOwned):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidScope),
		errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrSearchTooLong),
		errors.Is(err, services.ErrDetailsTooLong),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrProjectInactive),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrCategoryInactive),
		errors.Is(err, services.ErrBatchEmpty),
		errors.Is(err, services.ErrBatchTooLarge),
		errors.Is(err, services.ErrBatchDuplicateID):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrBatchLogNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
