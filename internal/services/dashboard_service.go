package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shiftlog/work-hour-api/internal/cache"
	"github.com/shiftlog/work-hour-api/internal/constants"
	"github.com/shiftlog/work-hour-api/internal/dto"
	"github.com/shiftlog/work-hour-api/internal/models"
	"github.com/shiftlog/work-hour-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidPeriod      = errors.New("period must be one of today, week, month, custom")
	ErrCustomPeriodBounds = errors.New("custom period requires start and end dates")
	ErrPeriodTooLong      = errors.New("period must not exceed one year")
	ErrTeamNotFound       = errors.New("team not found")
	ErrNotTeamMember      = errors.New("user is not a member of this team")
)

// Dashboard periods.
const (
	PeriodToday  = "today"
	PeriodWeek   = "week"
	PeriodMonth  = "month"
	PeriodCustom = "custom"
)

// deletedLabel stands in for display names of rows that no longer resolve.
const deletedLabel = "(deleted)"

// DashboardService computes work-log statistics. All hour arithmetic runs
// on decimals; float64 never touches a sum.
type DashboardService struct {
	workLogRepo repository.WorkLogRepository
	teamRepo    repository.TeamRepository
	statsCache  *cache.Cache
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(workLogRepo repository.WorkLogRepository, teamRepo repository.TeamRepository, statsCache *cache.Cache) *DashboardService {
	return &DashboardService{
		workLogRepo: workLogRepo,
		teamRepo:    teamRepo,
		statsCache:  statsCache,
		now:         time.Now,
	}
}

// StatsPeriodInput selects the date window for a dashboard query.
type StatsPeriodInput struct {
	Period    string
	StartDate *time.Time
	EndDate   *time.Time
}

// resolveWindow maps a period input onto [from, to] calendar-day bounds.
func (s *DashboardService) resolveWindow(input StatsPeriodInput) (time.Time, time.Time, error) {
	today := dayStart(s.now())

	switch input.Period {
	case PeriodToday, "":
		return today, today, nil
	case PeriodWeek:
		return weekStart(today), today, nil
	case PeriodMonth:
		return monthStart(today), today, nil
	case PeriodCustom:
		if input.StartDate == nil || input.EndDate == nil {
			return time.Time{}, time.Time{}, ErrCustomPeriodBounds
		}
		from := dayStart(*input.StartDate)
		to := dayStart(*input.EndDate)
		if from.After(to) {
			return time.Time{}, time.Time{}, ErrInvalidDateRange
		}
		if to.Sub(from) > 366*24*time.Hour {
			return time.Time{}, time.Time{}, ErrPeriodTooLong
		}
		return from, to, nil
	default:
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
}

// PersonalStats computes the caller's own dashboard.
func (s *DashboardService) PersonalStats(ctx context.Context, userID uint64, input StatsPeriodInput) (*dto.DashboardStats, error) {
	from, to, err := s.resolveWindow(input)
	if err != nil {
		return nil, err
	}

	key := cache.PersonalKey(userID, input.Period,
		from.Format(constants.DateFormat), to.Format(constants.DateFormat))

	var cached dto.DashboardStats
	if s.statsCache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	stats, err := s.computeStats([]uint64{userID}, nil, from, to, false)
	if err != nil {
		return nil, err
	}

	s.statsCache.Set(ctx, key, stats)

	return stats, nil
}

// TeamStats computes the dashboard over one team's members. The caller must
// belong to the team in any role; admins see every team.
func (s *DashboardService) TeamStats(ctx context.Context, callerID uint64, callerRole models.UserRole, teamID uint64, input StatsPeriodInput) (*dto.DashboardStats, error) {
	if _, err := s.teamRepo.FindByID(teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	if !models.HasRole(callerRole, models.RoleAdmin) {
		if _, err := s.teamRepo.FindMember(teamID, callerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotTeamMember
			}
			return nil, fmt.Errorf("failed to verify team membership: %w", err)
		}
	}

	from, to, err := s.resolveWindow(input)
	if err != nil {
		return nil, err
	}

	key := cache.TeamKey(teamID, input.Period,
		from.Format(constants.DateFormat), to.Format(constants.DateFormat))

	var cached dto.DashboardStats
	if s.statsCache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}

	userIDs := make([]uint64, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	if len(userIDs) == 0 {
		// A team with no members has nothing to aggregate; pin the filter
		// to an impossible user so the query stays restricted.
		userIDs = []uint64{0}
	}

	stats, err := s.computeStats(userIDs, nil, from, to, true)
	if err != nil {
		return nil, err
	}

	s.statsCache.Set(ctx, key, stats)

	return stats, nil
}

// ProjectStats computes the cross-user by-project dashboard.
func (s *DashboardService) ProjectStats(ctx context.Context, projectIDs []uint64, input StatsPeriodInput) (*dto.DashboardStats, error) {
	from, to, err := s.resolveWindow(input)
	if err != nil {
		return nil, err
	}

	key := cache.ProjectKey(projectIDs, input.Period,
		from.Format(constants.DateFormat), to.Format(constants.DateFormat))

	var cached dto.DashboardStats
	if s.statsCache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	stats, err := s.computeStats(nil, projectIDs, from, to, true)
	if err != nil {
		return nil, err
	}

	s.statsCache.Set(ctx, key, stats)

	return stats, nil
}

// computeStats fetches one row set wide enough for both the summary cards
// and the selected period, then aggregates in memory with decimals.
func (s *DashboardService) computeStats(userIDs, projectIDs []uint64, from, to time.Time, includeUsers bool) (*dto.DashboardStats, error) {
	today := dayStart(s.now())

	// Cards always cover today / this week / this month, so the fetch
	// window is the union of the period and the month-to-date window.
	fetchFrom := from
	if ms := monthStart(today); ms.Before(fetchFrom) {
		fetchFrom = ms
	}
	if ws := weekStart(today); ws.Before(fetchFrom) {
		fetchFrom = ws
	}
	fetchTo := to
	if today.After(fetchTo) {
		fetchTo = today
	}

	rows, err := s.workLogRepo.StatRows(fetchFrom, fetchTo, userIDs, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stat rows: %w", err)
	}

	stats := &dto.DashboardStats{
		Cards: []dto.SummaryCard{
			summarize("today", rows, today, today),
			summarize("week", rows, weekStart(today), today),
			summarize("month", rows, monthStart(today), today),
		},
	}

	periodRows := rowsInWindow(rows, from, to)
	stats.ByProject = breakdown(periodRows, func(r repository.StatRow) (uint64, string) {
		return r.ProjectID, r.ProjectName
	})
	stats.ByCategory = breakdown(periodRows, func(r repository.StatRow) (uint64, string) {
		return r.CategoryID, r.CategoryName
	})
	if includeUsers {
		stats.ByUser = breakdown(periodRows, func(r repository.StatRow) (uint64, string) {
			return r.UserID, r.UserName
		})
	}
	stats.DailyTrend = dailyTrend(periodRows, from, to)

	return stats, nil
}

// summarize totals the rows falling inside one card window.
func summarize(label string, rows []repository.StatRow, from, to time.Time) dto.SummaryCard {
	total := decimal.Zero
	count := 0
	for _, row := range rowsInWindow(rows, from, to) {
		total = total.Add(parseHours(row.Hours))
		count++
	}

	return dto.SummaryCard{
		Label:      label,
		TotalHours: total.StringFixed(1),
		LogCount:   count,
	}
}

// breakdown groups rows by a dimension, sums hours per group, and computes
// each group's share of the grand total. A zero grand total yields 0% for
// every group rather than a division by zero.
func breakdown(rows []repository.StatRow, dim func(repository.StatRow) (uint64, string)) []dto.BreakdownRow {
	type group struct {
		id    uint64
		name  string
		hours decimal.Decimal
		count int
	}

	groups := make(map[uint64]*group)
	order := make([]uint64, 0)
	total := decimal.Zero

	for _, row := range rows {
		id, name := dim(row)
		g, ok := groups[id]
		if !ok {
			if name == "" {
				name = deletedLabel
			}
			g = &group{id: id, name: name, hours: decimal.Zero}
			groups[id] = g
			order = append(order, id)
		}
		value := parseHours(row.Hours)
		g.hours = g.hours.Add(value)
		g.count++
		total = total.Add(value)
	}

	result := make([]dto.BreakdownRow, 0, len(groups))
	hundred := decimal.NewFromInt(100)
	for _, id := range order {
		g := groups[id]
		percentage := decimal.Zero
		if total.IsPositive() {
			percentage = g.hours.Mul(hundred).Div(total).Round(1)
		}
		result = append(result, dto.BreakdownRow{
			ID:         g.id,
			Name:       g.name,
			Hours:      g.hours.StringFixed(1),
			Percentage: percentage.StringFixed(1),
			LogCount:   g.count,
		})
	}

	// Largest groups first; name breaks ties for a stable order.
	sort.SliceStable(result, func(i, j int) bool {
		hi := decimal.RequireFromString(result[i].Hours)
		hj := decimal.RequireFromString(result[j].Hours)
		if !hi.Equal(hj) {
			return hi.GreaterThan(hj)
		}
		return result[i].Name < result[j].Name
	})

	return result
}

// dailyTrend produces one point per calendar day across the window,
// zero-filled for days without logs.
func dailyTrend(rows []repository.StatRow, from, to time.Time) []dto.TrendPoint {
	byDay := make(map[string]decimal.Decimal)
	for _, row := range rows {
		key := dayStart(row.Date).Format(constants.DateFormat)
		byDay[key] = byDay[key].Add(parseHours(row.Hours))
	}

	points := make([]dto.TrendPoint, 0)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(constants.DateFormat)
		total, ok := byDay[key]
		if !ok {
			total = decimal.Zero
		}
		points = append(points, dto.TrendPoint{
			Date:  key,
			Hours: total.StringFixed(1),
		})
	}

	return points
}

func rowsInWindow(rows []repository.StatRow, from, to time.Time) []repository.StatRow {
	out := make([]repository.StatRow, 0, len(rows))
	for _, row := range rows {
		day := dayStart(row.Date)
		if day.Before(from) || day.After(to) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// parseHours tolerates malformed stored values by treating them as zero;
// validation guarantees well-formed hours on every write path.
func parseHours(s string) decimal.Decimal {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return value
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekStart returns the Monday of t's week.
func weekStart(t time.Time) time.Time {
	day := dayStart(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
