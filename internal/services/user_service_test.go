package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/shiftlog/work-hour-api/internal/models"
	"github.com/shiftlog/work-hour-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUserService(t *testing.T) (*gorm.DB, *UserService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}))

	service := NewUserService(repository.NewUserRepository(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, service
}

func TestUserService_CreateUser(t *testing.T) {
	_, service := setupUserService(t)

	user, err := service.CreateUser(CreateUserInput{
		Username: "manager1",
		Password: "supersecret",
		Role:     models.RoleManager,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleManager, user.Role)
	require.Equal(t, "manager1", user.DisplayName)
	require.True(t, user.IsActive)

	_, err = service.CreateUser(CreateUserInput{
		Username: "manager1",
		Password: "supersecret",
		Role:     models.RoleUser,
	})
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = service.CreateUser(CreateUserInput{
		Username: "short",
		Password: "tiny",
		Role:     models.RoleUser,
	})
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = service.CreateUser(CreateUserInput{
		Username: "weirdrole",
		Password: "supersecret",
		Role:     "superuser",
	})
	require.ErrorIs(t, err, ErrInvalidUserRole)
}

func TestUserService_CannotDeactivateSelf(t *testing.T) {
	_, service := setupUserService(t)

	admin, err := service.CreateUser(CreateUserInput{
		Username: "admin",
		Password: "supersecret",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)

	_, err = service.DeactivateUser(admin.ID, admin.ID)
	require.ErrorIs(t, err, ErrCannotDeactivateSelf)

	inactive := false
	_, err = service.UpdateUser(admin.ID, admin.ID, UpdateUserInput{IsActive: &inactive})
	require.ErrorIs(t, err, ErrCannotDeactivateSelf)
}

func TestUserService_DeactivateIsIdempotent(t *testing.T) {
	_, service := setupUserService(t)

	admin, err := service.CreateUser(CreateUserInput{
		Username: "admin",
		Password: "supersecret",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)

	target, err := service.CreateUser(CreateUserInput{
		Username: "target",
		Password: "supersecret",
		Role:     models.RoleUser,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		user, err := service.DeactivateUser(target.ID, admin.ID)
		require.NoError(t, err)
		require.False(t, user.IsActive)
	}
}

func TestUserService_UpdateRole(t *testing.T) {
	_, service := setupUserService(t)

	admin, err := service.CreateUser(CreateUserInput{
		Username: "admin",
		Password: "supersecret",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)

	target, err := service.CreateUser(CreateUserInput{
		Username: "target",
		Password: "supersecret",
		Role:     models.RoleUser,
	})
	require.NoError(t, err)

	role := models.RoleManager
	updated, err := service.UpdateUser(target.ID, admin.ID, UpdateUserInput{Role: &role})
	require.NoError(t, err)
	require.Equal(t, models.RoleManager, updated.Role)

	bad := models.UserRole("root")
	_, err = service.UpdateUser(target.ID, admin.ID, UpdateUserInput{Role: &bad})
	require.ErrorIs(t, err, ErrInvalidUserRole)
}
