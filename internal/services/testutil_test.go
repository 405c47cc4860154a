package services_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/streamhive/streamhive-backend/internal/config"
	"github.com/streamhive/streamhive-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory SQLite database with the domain
// models migrated.
func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenSecret:  "test-access-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenSecret: "test-refresh-secret",
		RefreshTokenExpiry: time.Hour,
	}
}

// fakeStorage implements media.Storage. Upload honors the contract of
// consuming the local temp file whether or not it succeeds. When uploadErr
// is set, uploads fail once failAfter successes have happened.
type fakeStorage struct {
	uploads   int
	deleted   []string
	uploadErr error
	failAfter int
	deleteErr error
}

func (f *fakeStorage) Upload(_ context.Context, localPath string) (string, error) {
	os.Remove(localPath)
	if f.uploadErr != nil && f.uploads >= f.failAfter {
		return "", f.uploadErr
	}
	f.uploads++
	return fmt.Sprintf("https://media.test/assets/%d", f.uploads), nil
}

func (f *fakeStorage) Delete(_ context.Context, fileURL string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, fileURL)
	return nil
}

var errUploadFailed = errors.New("upload failed")

// tempUpload creates a throwaway local file standing in for a spooled
// multipart upload.
func tempUpload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), uuid.NewString()+".png")
	require.NoError(t, os.WriteFile(path, []byte("fake image bytes"), 0o600))
	return path
}
