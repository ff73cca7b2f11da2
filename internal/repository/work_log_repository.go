package repository

import (
	"strings"
	"time"

	"github.com/shiftlog/work-hour-api/internal/database"
	"github.com/shiftlog/work-hour-api/internal/models"
	"github.com/shiftlog/work-hour-api/internal/utils"
	"gorm.io/gorm"
)

// GormWorkLogRepository is a GORM implementation of WorkLogRepository
type GormWorkLogRepository struct {
	db *gorm.DB
}

// NewWorkLogRepository creates a new WorkLogRepository
func NewWorkLogRepository(db *gorm.DB) WorkLogRepository {
	return &GormWorkLogRepository{db: db}
}

// Create creates a new work log
func (r *GormWorkLogRepository) Create(workLog *models.WorkLog) error {
	return r.db.Create(workLog).Error
}

// FindByID finds a work log by ID with optional preloading
func (r *GormWorkLogRepository) FindByID(id uint64, preload ...string) (*models.WorkLog, error) {
	var workLog models.WorkLog
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&workLog, id).Error; err != nil {
		return nil, err
	}

	return &workLog, nil
}

// FindByIDs finds work logs for a set of IDs
func (r *GormWorkLogRepository) FindByIDs(ids []uint64) ([]models.WorkLog, error) {
	var workLogs []models.WorkLog
	if err := r.db.Where("id IN ?", ids).Find(&workLogs).Error; err != nil {
		return nil, err
	}
	return workLogs, nil
}

// List retrieves work logs with filtering and pagination. Results are
// ordered by date descending with id as the tie-break.
func (r *GormWorkLogRepository) List(filter WorkLogFilter) ([]models.WorkLog, int64, error) {
	var workLogs []models.WorkLog

	query := r.db.Model(&models.WorkLog{})

	if len(filter.UserIDs) > 0 {
		query = query.Where("work_logs.user_id IN ?", filter.UserIDs)
	}
	if len(filter.ProjectIDs) > 0 {
		query = query.Where("work_logs.project_id IN ?", filter.ProjectIDs)
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where("work_logs.category_id IN ?", filter.CategoryIDs)
	}
	if filter.DateFrom != nil {
		query = query.Where("work_logs.date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("work_logs.date <= ?", *filter.DateTo)
	}
	if filter.SearchText != "" {
		search := "%" + escapeLike(strings.ToLower(filter.SearchText)) + "%"
		query = query.Where("LOWER(work_logs.details) LIKE ?", search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("work_logs.date DESC, work_logs.id DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.
		Preload("User").
		Preload("Project").
		Preload("Category").
		Find(&workLogs).Error; err != nil {
		return nil, 0, err
	}

	return workLogs, total, nil
}

// Update updates a work log
func (r *GormWorkLogRepository) Update(workLog *models.WorkLog) error {
	return r.db.Save(workLog).Error
}

// UpdateAll persists a set of work logs inside one transaction. Any failure
// rolls back every entry.
func (r *GormWorkLogRepository) UpdateAll(workLogs []*models.WorkLog) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, workLog := range workLogs {
			if err := tx.Save(workLog).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete hard deletes a work log
func (r *GormWorkLogRepository) Delete(id uint64) error {
	return r.db.Unscoped().Delete(&models.WorkLog{}, id).Error
}

// CountOwnedByIDs counts how many of the given work log IDs belong to the
// user. One query instead of a point lookup per id; callers compare the
// count against the distinct id count to decide all-or-nothing.
func (r *GormWorkLogRepository) CountOwnedByIDs(ids []uint64, userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.WorkLog{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Count(&count).Error
	return count, err
}

// StatRows fetches the aggregation projection for a date window.
func (r *GormWorkLogRepository) StatRows(from, to time.Time, userIDs []uint64, projectIDs []uint64) ([]StatRow, error) {
	query := r.db.Model(&models.WorkLog{}).
		Select(`work_logs.user_id,
			work_logs.project_id,
			work_logs.category_id,
			work_logs.date,
			work_logs.hours,
			users.display_name AS user_name,
			projects.name AS project_name,
			work_categories.name AS category_name`).
		Joins("LEFT JOIN users ON users.id = work_logs.user_id").
		Joins("LEFT JOIN projects ON projects.id = work_logs.project_id").
		Joins("LEFT JOIN work_categories ON work_categories.id = work_logs.category_id").
		Where("work_logs.date >= ? AND work_logs.date <= ?", from, to)

	if len(userIDs) > 0 {
		query = query.Where("work_logs.user_id IN ?", userIDs)
	}
	if len(projectIDs) > 0 {
		query = query.Where("work_logs.project_id IN ?", projectIDs)
	}

	var rows []StatRow
	if err := query.Order("work_logs.date ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// escapeLike escapes LIKE wildcards in user-supplied search text.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
