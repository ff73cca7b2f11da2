package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/shiftlog/work-hour-api/internal/cache"
	"github.com/shiftlog/work-hour-api/internal/constants"
	"github.com/shiftlog/work-hour-api/internal/models"
	"github.com/shiftlog/work-hour-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fixedNow pins the dashboard clock to Thursday 2026-08-20.
var fixedNow = time.Date(2026, 8, 20, 15, 4, 5, 0, time.UTC)

type dashboardTestEnv struct {
	db      *gorm.DB
	service *DashboardService
}

func setupDashboardTestEnv(t *testing.T) dashboardTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.WorkCategory{},
		&models.Team{},
		&models.TeamMember{},
		&models.WorkLog{},
	)
	require.NoError(t, err)

	workLogRepo := repository.NewWorkLogRepository(db)
	teamRepo := repository.NewTeamRepository(db)

	service := NewDashboardService(workLogRepo, teamRepo, nil)
	service.now = func() time.Time { return fixedNow }

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return dashboardTestEnv{db: db, service: service}
}

func (env dashboardTestEnv) createUser(t *testing.T, username string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		DisplayName:  username,
		PasswordHash: "hashedpassword",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env dashboardTestEnv) createProject(t *testing.T, name string) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, IsActive: true}
	require.NoError(t, env.db.Create(project).Error)
	return project
}

func (env dashboardTestEnv) createCategory(t *testing.T, name string) *models.WorkCategory {
	t.Helper()
	category := &models.WorkCategory{Name: name, IsActive: true}
	require.NoError(t, env.db.Create(category).Error)
	return category
}

func (env dashboardTestEnv) createLog(t *testing.T, userID, projectID, categoryID uint64, date, hours string) {
	t.Helper()
	day, err := time.Parse(constants.DateFormat, date)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&models.WorkLog{
		UserID:     userID,
		Date:       day,
		Hours:      hours,
		ProjectID:  projectID,
		CategoryID: categoryID,
	}).Error)
}

func TestPersonalStats_DecimalSums(t *testing.T) {
	env := setupDashboardTestEnv(t)

	user := env.createUser(t, "alice", models.RoleUser)
	project := env.createProject(t, "Platform")
	category := env.createCategory(t, "Development")

	// Three tenths summed as floats would drift; as decimals they must not.
	for i := 0; i < 3; i++ {
		env.createLog(t, user.ID, project.ID, category.ID, "2026-08-20", "0.10")
	}

	stats, err := env.service.PersonalStats(context.Background(), user.ID, StatsPeriodInput{Period: PeriodToday})
	require.NoError(t, err)

	require.Len(t, stats.Cards, 3)
	require.Equal(t, "today", stats.Cards[0].Label)
	require.Equal(t, "0.3", stats.Cards[0].TotalHours)
	require.Equal(t, 3, stats.Cards[0].LogCount)
}

func TestPersonalStats_Cards(t *testing.T) {
	env := setupDashboardTestEnv(t)

	user := env.createUser(t, "alice", models.RoleUser)
	project := env.createProject(t, "Platform")
	category := env.createCategory(t, "Development")

	env.createLog(t, user.ID, project.ID, category.ID, "2026-08-20", "2.00") // today
	env.createLog(t, user.ID, project.ID, category.ID, "2026-08-18", "3.00") // this week
	env.createLog(t, user.ID, project.ID, category.ID, "2026-08-03", "4.00") // this month
	env.createLog(t, user.ID, project.ID, category.ID, "2026-07-30", "8.00") // last month

	stats, err := env.service.PersonalStats(context.Background(), user.ID, StatsPeriodInput{Period: PeriodMonth})
	require.NoError(t, err)

	require.Equal(t, "2.0", stats.Cards[0].TotalHours) // today
	require.Equal(t, "5.0", stats.Cards[1].TotalHours) // week, Mon 08-17 .. Thu 08-20
	require.Equal(t, "9.0", stats.Cards[2].TotalHours) // month to date
}

func TestPersonalStats_BreakdownPercentages(t *testing.T) {
	env := setupDashboardTestEnv(t)

	user := env.createUser(t, "alice", models.RoleUser)
	platform := env.createProject(t, "Platform")
	mobile := env.createProject(t, "Mobile")
	category := env.createCategory(t, "Development")

	env.createLog(t, user.ID, platform.ID, category.ID, "2026-08-20", "7.50")
	env.createLog(t, user.ID, mobile.ID, category.ID, "2026-08-20", "2.50")

	stats, err := env.service.PersonalStats(context.Background(), user.ID, StatsPeriodInput{Period: PeriodToday})
	require.NoError(t, err)

	require.Len(t, stats.ByProject, 2)
	require.Equal(t, "Platform", stats.ByProject[0].Name)
	require.Equal(t, "7.5", stats.ByProject[0].Hours)
	require.Equal(t, "75.0", stats.ByProject[0].Percentage)
	require.Equal(t, "Mobile", stats.ByProject[1].Name)
	require.Equal(t, "25.0", stats.ByProject[1].Percentage)

	// Personal dashboards never carry the by-user dimension.
	require.Nil(t, stats.ByUser)
}

func TestPersonalStats_DailyTrendZeroFilled(t *testing.T) {
	env := setupDashboardTestEnv(t)

	user := env.createUser(t, "alice", models.RoleUser)
	project := env.createProject(t, "Platform")
	category := env.createCategory(t, "Development")

	env.createLog(t, user.ID, project.ID, category.ID, "2026-08-18", "3.00")

	start := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	stats, err := env.service.PersonalStats(context.Background(), user.ID, StatsPeriodInput{
		Period:    PeriodCustom,
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)

	require.Len(t, stats.DailyTrend, 4)
	require.Equal(t, "2026-08-17", stats.DailyTrend[0].Date)
	require.Equal(t, "0.0", stats.DailyTrend[0].Hours)
	require.Equal(t, "2026-08-18", stats.DailyTrend[1].Date)
	require.Equal(t, "3.0", stats.DailyTrend[1].Hours)
	require.Equal(t, "0.0", stats.DailyTrend[2].Hours)
	require.Equal(t, "0.0", stats.DailyTrend[3].Hours)
}

func TestPersonalStats_DeletedProjectGetsPlaceholder(t *testing.T) {
	env := setupDashboardTestEnv(t)

	user := env.createUser(t, "alice", models.RoleUser)
	project := env.createProject(t, "Platform")
	category := env.createCategory(t, "Development")

	env.createLog(t, user.ID, project.ID, category.ID, "2026-08-20", "2.00")
	require.NoError(t, env.db.Delete(&models.Project{}, project.ID).Error)

	stats, err := env.service.PersonalStats(context.Background(), user.ID, StatsPeriodInput{Period: PeriodToday})
	require.NoError(t, err)

	require.Len(t, stats.ByProject, 1)
	require.Equal(t, "(deleted)", stats.ByProject[0].Name)
}

func TestPersonalStats_InvalidPeriod(t *testing.T) {
	env := setupDashboardTestEnv(t)
	user := env.createUser(t, "alice", models.RoleUser)

	_, err := env.service.PersonalStats(context.Background(), user.ID, StatsPeriodInput{Period: "decade"})
	require.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = env.service.PersonalStats(context.Background(), user.ID, StatsPeriodInput{Period: PeriodCustom})
	require.ErrorIs(t, err, ErrCustomPeriodBounds)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = env.service.PersonalStats(context.Background(), user.ID, StatsPeriodInput{
		Period:    PeriodCustom,
		StartDate: &start,
		EndDate:   &end,
	})
	require.ErrorIs(t, err, ErrPeriodTooLong)
}

func TestTeamStats_MembershipRequired(t *testing.T) {
	env := setupDashboardTestEnv(t)

	leader := env.createUser(t, "leader", models.RoleUser)
	outsider := env.createUser(t, "outsider", models.RoleUser)
	admin := env.createUser(t, "admin", models.RoleAdmin)
	project := env.createProject(t, "Platform")
	category := env.createCategory(t, "Development")

	team := &models.Team{Name: "Core", IsActive: true}
	require.NoError(t, env.db.Create(team).Error)
	require.NoError(t, env.db.Create(&models.TeamMember{
		TeamID:   team.ID,
		UserID:   leader.ID,
		Role:     models.TeamRoleLeader,
		JoinedAt: fixedNow,
	}).Error)

	env.createLog(t, leader.ID, project.ID, category.ID, "2026-08-20", "6.00")

	input := StatsPeriodInput{Period: PeriodToday}

	_, err := env.service.TeamStats(context.Background(), outsider.ID, outsider.Role, team.ID, input)
	require.ErrorIs(t, err, ErrNotTeamMember)

	stats, err := env.service.TeamStats(context.Background(), leader.ID, leader.Role, team.ID, input)
	require.NoError(t, err)
	require.Equal(t, "6.0", stats.Cards[0].TotalHours)
	require.Len(t, stats.ByUser, 1)
	require.Equal(t, "leader", stats.ByUser[0].Name)

	// Admins see every team without membership.
	_, err = env.service.TeamStats(context.Background(), admin.ID, admin.Role, team.ID, input)
	require.NoError(t, err)

	_, err = env.service.TeamStats(context.Background(), leader.ID, leader.Role, team.ID+100, input)
	require.ErrorIs(t, err, ErrTeamNotFound)
}

func TestTeamStats_EmptyTeamAggregatesNothing(t *testing.T) {
	env := setupDashboardTestEnv(t)

	admin := env.createUser(t, "admin", models.RoleAdmin)
	project := env.createProject(t, "Platform")
	category := env.createCategory(t, "Development")
	env.createLog(t, admin.ID, project.ID, category.ID, "2026-08-20", "6.00")

	team := &models.Team{Name: "Empty", IsActive: true}
	require.NoError(t, env.db.Create(team).Error)

	stats, err := env.service.TeamStats(context.Background(), admin.ID, admin.Role, team.ID, StatsPeriodInput{Period: PeriodToday})
	require.NoError(t, err)
	require.Equal(t, "0.0", stats.Cards[0].TotalHours)
	require.Empty(t, stats.ByProject)
}

func TestTeamAndProjectStats_CachedUntilTTL(t *testing.T) {
	env := setupDashboardTestEnv(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})
	env.service.statsCache = cache.New(client, 5*time.Minute)

	admin := env.createUser(t, "admin", models.RoleAdmin)
	alice := env.createUser(t, "alice", models.RoleUser)
	project := env.createProject(t, "Platform")
	category := env.createCategory(t, "Development")

	team := &models.Team{Name: "Core", IsActive: true}
	require.NoError(t, env.db.Create(team).Error)
	require.NoError(t, env.db.Create(&models.TeamMember{
		TeamID:   team.ID,
		UserID:   alice.ID,
		Role:     models.TeamRoleMember,
		JoinedAt: fixedNow,
	}).Error)

	env.createLog(t, alice.ID, project.ID, category.ID, "2026-08-20", "2.00")

	ctx := context.Background()
	input := StatsPeriodInput{Period: PeriodToday}

	stats, err := env.service.TeamStats(ctx, admin.ID, admin.Role, team.ID, input)
	require.NoError(t, err)
	require.Equal(t, "2.0", stats.Cards[0].TotalHours)

	_, err = env.service.ProjectStats(ctx, []uint64{project.ID}, input)
	require.NoError(t, err)

	var teamKeys, projectKeys int
	for _, key := range mr.Keys() {
		switch {
		case strings.HasPrefix(key, "dashboard:team:"):
			teamKeys++
		case strings.HasPrefix(key, "dashboard:project:"):
			projectKeys++
		}
	}
	require.Equal(t, 1, teamKeys)
	require.Equal(t, 1, projectKeys)

	// A fresh log is invisible until the entry expires, then shows up.
	env.createLog(t, alice.ID, project.ID, category.ID, "2026-08-20", "4.00")

	stats, err = env.service.TeamStats(ctx, admin.ID, admin.Role, team.ID, input)
	require.NoError(t, err)
	require.Equal(t, "2.0", stats.Cards[0].TotalHours)

	mr.FastForward(6 * time.Minute)

	stats, err = env.service.TeamStats(ctx, admin.ID, admin.Role, team.ID, input)
	require.NoError(t, err)
	require.Equal(t, "6.0", stats.Cards[0].TotalHours)
}

func TestProjectStats_FiltersToRequestedProjects(t *testing.T) {
	env := setupDashboardTestEnv(t)

	alice := env.createUser(t, "alice", models.RoleUser)
	bob := env.createUser(t, "bob", models.RoleUser)
	platform := env.createProject(t, "Platform")
	mobile := env.createProject(t, "Mobile")
	category := env.createCategory(t, "Development")

	env.createLog(t, alice.ID, platform.ID, category.ID, "2026-08-20", "4.00")
	env.createLog(t, bob.ID, platform.ID, category.ID, "2026-08-20", "2.00")
	env.createLog(t, bob.ID, mobile.ID, category.ID, "2026-08-20", "8.00")

	stats, err := env.service.ProjectStats(context.Background(), []uint64{platform.ID}, StatsPeriodInput{Period: PeriodToday})
	require.NoError(t, err)

	require.Equal(t, "6.0", stats.Cards[0].TotalHours)
	require.Len(t, stats.ByProject, 1)
	require.Equal(t, "Platform", stats.ByProject[0].Name)
	require.Equal(t, "100.0", stats.ByProject[0].Percentage)
	require.Len(t, stats.ByUser, 2)
}
