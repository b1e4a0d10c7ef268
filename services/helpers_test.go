package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"inkwell/config"
	"inkwell/database"
	"inkwell/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db            *database.DB
	auth          *AuthService
	articles      *ArticleService
	social        *SocialService
	notifications *NotificationService
}

// setupTestEnv opens a fresh SQLite file in the test's temp dir.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	notifications := NewNotificationService(db)
	return &testEnv{
		db:            db,
		auth:          NewAuthService(db),
		articles:      NewArticleService(db, notifications),
		social:        NewSocialService(db),
		notifications: notifications,
	}
}

func (e *testEnv) createAccount(t *testing.T, username string) *models.Account {
	t.Helper()
	account, err := e.auth.Register(context.Background(), username, "password123")
	require.NoError(t, err)
	return account
}

func (e *testEnv) createArticle(t *testing.T, authorID uint, title string) *models.Article {
	t.Helper()
	article, err := e.articles.CreateArticle(context.Background(), authorID, title, "Body of "+title, "")
	require.NoError(t, err)
	return article
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// markerStatus returns the account's marker status for articleID, or
// ErrNotFound when no marker was ever written.
func (e *testEnv) markerStatus(accountID, articleID uint) (string, error) {
	var marker models.ArticleRead
	err := e.db.Where("user_id = ? AND article_id = ?", accountID, articleID).First(&marker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	return marker.Status, err
}

func (e *testEnv) followerIDs(t *testing.T, accountID uint) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, e.db.Model(&models.Follow{}).
		Where("followed_id = ?", accountID).
		Order("follower_id").
		Pluck("follower_id", &ids).Error)
	return ids
}
