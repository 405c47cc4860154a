package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/streamhive/streamhive-backend/internal/config"
	"github.com/streamhive/streamhive-backend/internal/handlers"
	"github.com/streamhive/streamhive-backend/internal/models"
	"github.com/streamhive/streamhive-backend/internal/routes"
	"github.com/streamhive/streamhive-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeStorage keeps uploads out of the network while honoring the
// temp-file-consumption contract.
type fakeStorage struct {
	uploads int
}

func (f *fakeStorage) Upload(_ context.Context, localPath string) (string, error) {
	os.Remove(localPath)
	f.uploads++
	return fmt.Sprintf("https://media.test/assets/%d", f.uploads), nil
}

func (f *fakeStorage) Delete(_ context.Context, _ string) error { return nil }

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Video{},
		&models.WatchHistoryEntry{},
	))

	cfg := &config.Config{
		AccessTokenSecret:  "it-access-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenSecret: "it-refresh-secret",
		RefreshTokenExpiry: time.Hour,
	}

	storage := &fakeStorage{}
	authService := services.NewAuthService(db, cfg, storage)
	userService := services.NewUserService(db, storage)
	channelService := services.NewChannelService(db)

	app := fiber.New()
	routes.Setup(app, cfg,
		handlers.NewUserHandler(authService, userService),
		handlers.NewChannelHandler(channelService),
		handlers.NewHealthHandler(),
	)
	return app, db
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) (envelope, string) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env, string(raw)
}

func registerBody(t *testing.T, username, email string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	require.NoError(t, w.WriteField("username", username))
	require.NoError(t, w.WriteField("email", email))
	require.NoError(t, w.WriteField("fullName", "Stream Fan"))
	require.NoError(t, w.WriteField("password", "secret123"))
	fw, err := w.CreateFormFile("avatar", "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func jsonRequest(method, target string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func doRegister(t *testing.T, app *fiber.App, username, email string) *http.Response {
	t.Helper()
	body, contentType := registerBody(t, username, email)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestAccountLifecycle(t *testing.T) {
	app, _ := setupApp(t)

	// Register succeeds and sanitizes the response.
	resp := doRegister(t, app, "StreamFan", "fan@example.com")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	env, raw := decodeEnvelope(t, resp)
	assert.True(t, env.Success)
	assert.Contains(t, raw, `"username":"streamfan"`)
	assert.NotContains(t, raw, "password")
	assert.NotContains(t, raw, "secret123")

	// Duplicate registration conflicts.
	resp = doRegister(t, app, "streamfan", "elsewhere@example.com")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Wrong password is rejected without cookies.
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/users/login",
		fiber.Map{"username": "streamfan", "password": "wrong"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, cookieValue(resp, "accessToken"))
	assert.Empty(t, cookieValue(resp, "refreshToken"))

	// Successful login returns tokens and sets both cookies.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/users/login",
		fiber.Map{"username": "streamfan", "password": "secret123"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env, _ = decodeEnvelope(t, resp)
	var login struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.NotEmpty(t, login.AccessToken)
	assert.NotEmpty(t, login.RefreshToken)
	assert.Equal(t, login.AccessToken, cookieValue(resp, "accessToken"))
	assert.Equal(t, login.RefreshToken, cookieValue(resp, "refreshToken"))

	// Refresh via cookie rotates the pair.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: login.RefreshToken})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env, _ = decodeEnvelope(t, resp)
	var rotated struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rotated))
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, rotated.RefreshToken, cookieValue(resp, "refreshToken"))

	// Replaying the superseded token fails.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/users/refresh-token",
		fiber.Map{"refreshToken": login.RefreshToken}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Logout clears the slot and the cookies.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req.Header.Set("Authorization", "Bearer "+rotated.AccessToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, cookieValue(resp, "accessToken"))

	// The logged-out refresh token no longer rotates.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/users/refresh-token",
		fiber.Map{"refreshToken": rotated.RefreshToken}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshWithoutToken(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutesRequireAccessToken(t *testing.T) {
	app, _ := setupApp(t)

	for _, target := range []string{
		"/api/v1/users/current-user",
		"/api/v1/users/history",
		"/api/v1/users/c/somechannel",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, target)
	}
}

func loginFor(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/users/login",
		fiber.Map{"username": username, "password": "secret123"}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env, _ := decodeEnvelope(t, resp)
	var login struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	return login.AccessToken
}

func TestChannelProfileEndpoint(t *testing.T) {
	app, db := setupApp(t)

	resp := doRegister(t, app, "creator", "creator@example.com")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doRegister(t, app, "viewer", "viewer@example.com")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var creator, viewer models.User
	require.NoError(t, db.First(&creator, "username = ?", "creator").Error)
	require.NoError(t, db.First(&viewer, "username = ?", "viewer").Error)
	require.NoError(t, db.Create(&models.Subscription{
		SubscriberID: viewer.ID,
		ChannelID:    creator.ID,
	}).Error)

	token := loginFor(t, app, "viewer")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/c/Creator", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	httpResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, httpResp.StatusCode)

	env, raw := decodeEnvelope(t, httpResp)
	assert.True(t, env.Success)
	assert.Contains(t, raw, `"subscriberCount":1`)
	assert.Contains(t, raw, `"isSubscribed":true`)

	// Unknown channel keeps its historical 400.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/c/ghost", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	httpResp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, httpResp.StatusCode)
}
