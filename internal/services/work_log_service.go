package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shiftlog/work-hour-api/internal/cache"
	"github.com/shiftlog/work-hour-api/internal/constants"
	"github.com/shiftlog/work-hour-api/internal/models"
	"github.com/shiftlog/work-hour-api/internal/repository"
	"github.com/shiftlog/work-hour-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrWorkLogNotFound  = errors.New("work log not found")
	ErrNotWorkLogOwner  = errors.New("only the owner or an admin can modify this work log")
	ErrScopeForbidden   = errors.New("scope is not permitted for this user")
	ErrInvalidScope     = errors.New("scope must be one of own, team, all")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrSearchTooLong    = errors.New("search text is too long")
	ErrDetailsTooLong   = errors.New("details is too long")
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectInactive  = errors.New("project is not active")
	ErrCategoryNotFound = errors.New("work category not found")
	ErrCategoryInactive = errors.New("work category is not active")
	ErrBatchEmpty       = errors.New("batch must contain at least one entry")
	ErrBatchTooLarge    = errors.New("batch contains too many entries")
	ErrBatchDuplicateID = errors.New("batch contains duplicate work log IDs")
	ErrBatchNotOwned    = errors.New("one or more work logs in the batch belong to another user")
	ErrBatchLogNotFound = errors.New("one or more work logs in the batch do not exist")
)

// Work-log query scopes.
const (
	ScopeOwn  = "own"
	ScopeTeam = "team"
	ScopeAll  = "all"
)

// WorkLogService handles work log business logic
type WorkLogService struct {
	workLogRepo  repository.WorkLogRepository
	projectRepo  repository.ProjectRepository
	categoryRepo repository.CategoryRepository
	teamRepo     repository.TeamRepository
	statsCache   *cache.Cache
}

// NewWorkLogService creates a new WorkLogService
func NewWorkLogService(
	workLogRepo repository.WorkLogRepository,
	projectRepo repository.ProjectRepository,
	categoryRepo repository.CategoryRepository,
	teamRepo repository.TeamRepository,
	statsCache *cache.Cache,
) *WorkLogService {
	return &WorkLogService{
		workLogRepo:  workLogRepo,
		projectRepo:  projectRepo,
		categoryRepo: categoryRepo,
		teamRepo:     teamRepo,
		statsCache:   statsCache,
	}
}

// ListWorkLogsInput represents filters for listing work logs
type ListWorkLogsInput struct {
	CallerID    uint64
	CallerRole  models.UserRole
	Page        int
	Limit       int
	StartDate   *time.Time
	EndDate     *time.Time
	ProjectIDs  []uint64
	CategoryIDs []uint64
	UserID      *uint64
	SearchText  string
	Scope       string
}

// ListWorkLogs returns work logs visible to the caller under the requested
// scope. Non-admin callers can never widen their view past their own team.
func (s *WorkLogService) ListWorkLogs(input ListWorkLogsInput) ([]models.WorkLog, int64, error) {
	if input.StartDate != nil && input.EndDate != nil && input.StartDate.After(*input.EndDate) {
		return nil, 0, ErrInvalidDateRange
	}
	if utf8.RuneCountInString(input.SearchText) > constants.MaxSearchLength {
		return nil, 0, ErrSearchTooLong
	}

	userIDs, err := s.resolveVisibleUserIDs(input)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.WorkLogFilter{
		UserIDs:     userIDs,
		ProjectIDs:  input.ProjectIDs,
		CategoryIDs: input.CategoryIDs,
		DateFrom:    input.StartDate,
		DateTo:      input.EndDate,
		SearchText:  input.SearchText,
		Page:        input.Page,
		PageSize:    input.Limit,
	}

	workLogs, total, err := s.workLogRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list work logs: %w", err)
	}

	return workLogs, total, nil
}

// resolveVisibleUserIDs maps the scope and optional user filter onto the
// set of user IDs the query may return. An empty slice means unrestricted.
func (s *WorkLogService) resolveVisibleUserIDs(input ListWorkLogsInput) ([]uint64, error) {
	isAdmin := models.HasRole(input.CallerRole, models.RoleAdmin)

	// The user_id filter is honored for admins only; anyone else is pinned
	// to their own logs no matter what they sent.
	if input.UserID != nil && isAdmin {
		return []uint64{*input.UserID}, nil
	}

	scope := input.Scope
	if scope == "" {
		scope = ScopeOwn
	}

	switch scope {
	case ScopeOwn:
		return []uint64{input.CallerID}, nil
	case ScopeTeam:
		ids, err := s.teamRepo.CoMemberIDs(input.CallerID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve team members: %w", err)
		}
		return ids, nil
	case ScopeAll:
		if !isAdmin {
			return nil, ErrScopeForbidden
		}
		return nil, nil
	default:
		return nil, ErrInvalidScope
	}
}

// GetWorkLog returns a single work log visible to the caller.
func (s *WorkLogService) GetWorkLog(id, callerID uint64, callerRole models.UserRole) (*models.WorkLog, error) {
	workLog, err := s.workLogRepo.FindByID(id, "User", "Project", "Category")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkLogNotFound
		}
		return nil, fmt.Errorf("failed to find work log: %w", err)
	}

	if workLog.UserID != callerID && !models.HasRole(callerRole, models.RoleAdmin) {
		return nil, ErrNotWorkLogOwner
	}

	return workLog, nil
}

// CreateWorkLogInput represents input for creating a work log
type CreateWorkLogInput struct {
	UserID     uint64
	Date       time.Time
	Hours      string
	ProjectID  uint64
	CategoryID uint64
	Details    string
}

// CreateWorkLog creates a new work log after validating all fields.
func (s *WorkLogService) CreateWorkLog(ctx context.Context, input CreateWorkLogInput) (*models.WorkLog, error) {
	hours, err := utils.NormalizeHours(input.Hours)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(input.Details) > constants.MaxDetailsLength {
		return nil, ErrDetailsTooLong
	}
	if err := s.ensureProjectUsable(input.ProjectID); err != nil {
		return nil, err
	}
	if err := s.ensureCategoryUsable(input.CategoryID); err != nil {
		return nil, err
	}

	workLog := &models.WorkLog{
		UserID:     input.UserID,
		Date:       input.Date,
		Hours:      hours,
		ProjectID:  input.ProjectID,
		CategoryID: input.CategoryID,
		Details:    input.Details,
	}

	if err := s.workLogRepo.Create(workLog); err != nil {
		return nil, fmt.Errorf("failed to create work log: %w", err)
	}

	s.statsCache.InvalidateUser(ctx, input.UserID)

	return s.workLogRepo.FindByID(workLog.ID, "User", "Project", "Category")
}

// UpdateWorkLogInput represents a partial update. Nil fields are untouched.
type UpdateWorkLogInput struct {
	Date       *time.Time
	Hours      *string
	ProjectID  *uint64
	CategoryID *uint64
	Details    *string
}

// validate checks the fields that are present without touching the store
// for referenced rows; reference checks are separate so batch validation
// can run before any authorization query. Hours are rewritten to their
// canonical literal in place.
func (input *UpdateWorkLogInput) validate() error {
	if input.Hours != nil {
		hours, err := utils.NormalizeHours(*input.Hours)
		if err != nil {
			return err
		}
		input.Hours = &hours
	}
	if input.Details != nil && utf8.RuneCountInString(*input.Details) > constants.MaxDetailsLength {
		return ErrDetailsTooLong
	}
	return nil
}

// apply merges the present fields into the model.
func (input UpdateWorkLogInput) apply(workLog *models.WorkLog) {
	if input.Date != nil {
		workLog.Date = *input.Date
	}
	if input.Hours != nil {
		workLog.Hours = *input.Hours
	}
	if input.ProjectID != nil {
		workLog.ProjectID = *input.ProjectID
	}
	if input.CategoryID != nil {
		workLog.CategoryID = *input.CategoryID
	}
	if input.Details != nil {
		workLog.Details = *input.Details
	}
}

// UpdateWorkLog applies a partial update to one work log. The caller must
// own the record or be an admin.
func (s *WorkLogService) UpdateWorkLog(ctx context.Context, id, callerID uint64, callerRole models.UserRole, input UpdateWorkLogInput) (*models.WorkLog, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := s.ensureUpdateReferences(input); err != nil {
		return nil, err
	}

	workLog, err := s.workLogRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkLogNotFound
		}
		return nil, fmt.Errorf("failed to find work log: %w", err)
	}

	if workLog.UserID != callerID && !models.HasRole(callerRole, models.RoleAdmin) {
		return nil, ErrNotWorkLogOwner
	}

	input.apply(workLog)

	if err := s.workLogRepo.Update(workLog); err != nil {
		return nil, fmt.Errorf("failed to update work log: %w", err)
	}

	s.statsCache.InvalidateUser(ctx, workLog.UserID)

	return s.workLogRepo.FindByID(workLog.ID, "User", "Project", "Category")
}

// DeleteWorkLog removes a work log. The caller must own the record or be
// an admin. Work logs are hard-deleted.
func (s *WorkLogService) DeleteWorkLog(ctx context.Context, id, callerID uint64, callerRole models.UserRole) error {
	workLog, err := s.workLogRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkLogNotFound
		}
		return fmt.Errorf("failed to find work log: %w", err)
	}

	if workLog.UserID != callerID && !models.HasRole(callerRole, models.RoleAdmin) {
		return ErrNotWorkLogOwner
	}

	if err := s.workLogRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete work log: %w", err)
	}

	s.statsCache.InvalidateUser(ctx, workLog.UserID)

	return nil
}

// BatchUpdateEntry pairs a work log ID with its partial update.
type BatchUpdateEntry struct {
	ID   uint64
	Data UpdateWorkLogInput
}

// BatchUpdateWorkLogs validates and applies a set of partial updates as one
// atomic unit. Validation covers every entry before any write; a non-admin
// caller must own every referenced log or the whole batch is rejected with
// zero changes applied.
func (s *WorkLogService) BatchUpdateWorkLogs(ctx context.Context, callerID uint64, callerRole models.UserRole, entries []BatchUpdateEntry) ([]models.WorkLog, error) {
	if len(entries) == 0 {
		return nil, ErrBatchEmpty
	}
	if len(entries) > constants.MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	ids := make([]uint64, 0, len(entries))
	seen := make(map[uint64]struct{}, len(entries))
	for i := range entries {
		entry := &entries[i]
		if _, dup := seen[entry.ID]; dup {
			return nil, ErrBatchDuplicateID
		}
		seen[entry.ID] = struct{}{}
		ids = append(ids, entry.ID)

		if err := entry.Data.validate(); err != nil {
			return nil, err
		}
		if err := s.ensureUpdateReferences(entry.Data); err != nil {
			return nil, err
		}
	}

	// Ownership for the whole batch resolves with a single query; a count
	// short of the id count means at least one log is someone else's.
	if !models.HasRole(callerRole, models.RoleAdmin) {
		owned, err := s.workLogRepo.CountOwnedByIDs(ids, callerID)
		if err != nil {
			return nil, fmt.Errorf("failed to check ownership: %w", err)
		}
		if owned != int64(len(ids)) {
			return nil, ErrBatchNotOwned
		}
	}

	workLogs, err := s.workLogRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load work logs: %w", err)
	}
	if len(workLogs) != len(ids) {
		return nil, ErrBatchLogNotFound
	}

	byID := make(map[uint64]*models.WorkLog, len(workLogs))
	for i := range workLogs {
		byID[workLogs[i].ID] = &workLogs[i]
	}

	updated := make([]*models.WorkLog, 0, len(entries))
	for _, entry := range entries {
		workLog := byID[entry.ID]
		entry.Data.apply(workLog)
		updated = append(updated, workLog)
	}

	if err := s.workLogRepo.UpdateAll(updated); err != nil {
		return nil, fmt.Errorf("failed to apply batch update: %w", err)
	}

	touched := make(map[uint64]struct{})
	result := make([]models.WorkLog, len(updated))
	for i, workLog := range updated {
		result[i] = *workLog
		if _, done := touched[workLog.UserID]; !done {
			touched[workLog.UserID] = struct{}{}
			s.statsCache.InvalidateUser(ctx, workLog.UserID)
		}
	}

	return result, nil
}

// ensureUpdateReferences verifies referenced project/category rows when the
// update touches them.
func (s *WorkLogService) ensureUpdateReferences(input UpdateWorkLogInput) error {
	if input.ProjectID != nil {
		if err := s.ensureProjectUsable(*input.ProjectID); err != nil {
			return err
		}
	}
	if input.CategoryID != nil {
		if err := s.ensureCategoryUsable(*input.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

func (s *WorkLogService) ensureProjectUsable(id uint64) error {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}
	if !project.IsActive {
		return ErrProjectInactive
	}
	return nil
}

func (s *WorkLogService) ensureCategoryUsable(id uint64) error {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to find work category: %w", err)
	}
	if !category.IsActive {
		return ErrCategoryInactive
	}
	return nil
}
