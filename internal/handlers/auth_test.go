package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/shiftlog/work-hour-api/internal/config"
	"github.com/shiftlog/work-hour-api/internal/constants"
	"github.com/shiftlog/work-hour-api/internal/database"
	"github.com/shiftlog/work-hour-api/internal/middleware"
	"github.com/shiftlog/work-hour-api/internal/models"
	"github.com/shiftlog/work-hour-api/internal/repository"
	"github.com/shiftlog/work-hour-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	authService *services.AuthService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err)

	database.SetDB(db)

	cfg := &config.Config{Env: "test"}
	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo)
	handler := NewAuthHandler(authService, cfg)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	r.POST("/api/auth/signup", handler.Signup)
	r.POST("/api/auth/login", handler.Login)
	r.POST("/api/auth/logout", handler.Logout)
	r.GET("/api/auth/me", middleware.RequireAuth(cfg, userRepo), handler.GetCurrentUser)
	r.POST("/api/auth/change-password", middleware.RequireAuth(cfg, userRepo), handler.ChangePassword)
	r.POST("/api/auth/password-reset/request", handler.RequestPasswordReset)
	r.POST("/api/auth/password-reset/confirm", handler.ConfirmPasswordReset)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		router:      r,
		authService: authService,
	}
}

func (env authTestEnv) postJSON(t *testing.T, url string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "expected data object in response: %s", w.Body.String())
	return data
}

func TestAuthHandler_SignupFirstUserBecomesAdmin(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.postJSON(t, "/api/auth/signup", map[string]string{
		"username": "founder",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	data := decodeData(t, w)
	require.Equal(t, "founder", data["username"])
	require.Equal(t, "admin", data["role"])

	w = env.postJSON(t, "/api/auth/signup", map[string]string{
		"username": "second",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	data = decodeData(t, w)
	require.Equal(t, "user", data["role"])
}

func TestAuthHandler_SignupDuplicateUsername(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := map[string]string{"username": "alice", "password": "supersecret"}

	w := env.postJSON(t, "/api/auth/signup", payload, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.postJSON(t, "/api/auth/signup", payload, nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_SignupShortPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.postJSON(t, "/api/auth/signup", map[string]string{
		"username": "alice",
		"password": "short",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Username: "alice",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := env.postJSON(t, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	me := httptest.NewRecorder()
	env.router.ServeHTTP(me, req)

	require.Equal(t, http.StatusOK, me.Code)
	data := decodeData(t, me)
	require.Equal(t, "alice", data["username"])
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Username: "alice",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := env.postJSON(t, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "wrongwrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_LoginDeactivatedUser(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Signup(services.SignupInput{
		Username: "alice",
		Password: "supersecret",
	})
	require.NoError(t, err)

	env.db.Model(user).Update("is_active", false)

	w := env.postJSON(t, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_MeWithoutSession(t *testing.T) {
	env := setupAuthTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Username: "alice",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := env.postJSON(t, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()

	w = env.postJSON(t, "/api/auth/change-password", map[string]string{
		"current_password": "supersecret",
		"new_password":     "evenmoresecret",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	// Old password no longer works, new one does.
	w = env.postJSON(t, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.postJSON(t, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "evenmoresecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_PasswordResetFlow(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Username: "alice",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := env.postJSON(t, "/api/auth/password-reset/request", map[string]string{
		"username": "alice",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	token, ok := data["reset_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	w = env.postJSON(t, "/api/auth/password-reset/confirm", map[string]string{
		"token":        token,
		"new_password": "freshsecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.postJSON(t, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "freshsecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// A consumed token cannot be replayed.
	w = env.postJSON(t, "/api/auth/password-reset/confirm", map[string]string{
		"token":        token,
		"new_password": "anothersecret",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_PasswordResetUnknownUsername(t *testing.T) {
	env := setupAuthTestEnv(t)

	// Unknown accounts get the same success answer and no token.
	w := env.postJSON(t, "/api/auth/password-reset/request", map[string]string{
		"username": "nobody",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	_, hasToken := data["reset_token"]
	require.False(t, hasToken)
}
