package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/challenge-api/internal/config"
	"github.com/noah-isme/challenge-api/internal/database"
	"github.com/noah-isme/challenge-api/internal/handler"
	"github.com/noah-isme/challenge-api/internal/repository"
	"github.com/noah-isme/challenge-api/internal/router"
	"github.com/noah-isme/challenge-api/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:http_%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, repository.NewSessionRepository(db), nil, validate, service.AuthOptions{
		SessionTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, logger)
	activityService := service.NewActivityService(repository.NewActivityLogRepository(db), validate, logger)
	challengeService := service.NewChallengeService(
		db,
		repository.NewChallengeRepository(db),
		repository.NewStudentChallengeRepository(db),
		userRepo,
		activityService,
		nil,
		validate,
		logger,
	)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", AppEnv: "test", AuthRateLimitMax: 1000, AuthRateLimitWindow: time.Minute}, router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authService, logger),
		ChallengeHandler: handler.NewChallengeHandler(challengeService, logger),
		ActivityHandler:  handler.NewActivityHandler(activityService, logger),
		TokenValidator:   authService,
	})

	return app, db
}

func doRequest(t *testing.T, app *fiber.App, method, target, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func decodeData(t *testing.T, payload envelope, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(payload.Data, dest))
}

// signUp registers and logs in a user, returning the bearer token and user id.
func signUp(t *testing.T, app *fiber.App, name, role string) (string, uint) {
	t.Helper()

	email := strings.ToLower(name) + "@example.com"
	status, _ := doRequest(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "password": "secret1", "role": role, "name": name,
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, payload := doRequest(t, app, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": "secret1",
	})
	require.Equal(t, fiber.StatusOK, status)

	var login struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	decodeData(t, payload, &login)
	require.NotEmpty(t, login.Session.Token)
	return login.Session.Token, login.User.ID
}
