package services

import (
	"fmt"
	"testing"
	"time"

	"pulse/db"
	"pulse/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB инициализирует тестовую базу данных SQLite в памяти
func setupTestDB(t *testing.T) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Migrate(database))

	// Устанавливаем глобальную переменную ORM
	db.ORM = database

	// Redis и RabbitMQ в юнит-тестах не используются
	RedisClient = nil
	QueueServiceInstance = nil
}

func createTestUser(t *testing.T, name string) *models.User {
	t.Helper()

	user := &models.User{
		Nickname:  fmt.Sprintf("%s_%d", name, time.Now().UnixNano()),
		Name:      name,
		Password:  "testpassword",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, db.ORM.Create(user).Error)
	return user
}

func createPostAt(t *testing.T, userID int64, content string, createdAt time.Time) *models.Post {
	t.Helper()

	post := &models.Post{
		UserID:    userID,
		Content:   content,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.ORM.Create(post).Error)
	return post
}

func createFollowEdge(t *testing.T, followerID, followeeID int64) {
	t.Helper()

	edge := &models.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, db.ORM.Create(edge).Error)
}
