package services

import (
	"context"
	"testing"

	"pulse/db"
	"pulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	us := NewUserService()

	userID, err := us.Register(ctx, &models.User{
		Nickname: "jdoe",
		Name:     "John Doe",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotZero(t, userID)

	// Пароль в базе не в открытом виде
	var stored models.User
	require.NoError(t, db.ORM.First(&stored, userID).Error)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.Contains(t, stored.Password, "$")

	token, user, err := us.Login(ctx, "jdoe", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, userID, user.ID)
	assert.False(t, user.LastLogin.IsZero())

	resolved, err := us.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)
}

func TestLoginWrongPassword(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	us := NewUserService()

	_, err := us.Register(ctx, &models.User{Nickname: "jdoe", Name: "John", Password: "secret123"})
	require.NoError(t, err)

	_, _, err = us.Login(ctx, "jdoe", "wrong")
	assert.Error(t, err)

	_, _, err = us.Login(ctx, "nobody", "secret123")
	assert.Error(t, err)
}

func TestRegisterDuplicateNickname(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	us := NewUserService()

	_, err := us.Register(ctx, &models.User{Nickname: "jdoe", Name: "John", Password: "secret123"})
	require.NoError(t, err)

	_, err = us.Register(ctx, &models.User{Nickname: "jdoe", Name: "Jane", Password: "another"})
	assert.Error(t, err)
}

func TestLoginInvalidatesOldToken(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	us := NewUserService()

	_, err := us.Register(ctx, &models.User{Nickname: "jdoe", Name: "John", Password: "secret123"})
	require.NoError(t, err)

	first, _, err := us.Login(ctx, "jdoe", "secret123")
	require.NoError(t, err)
	second, _, err := us.Login(ctx, "jdoe", "secret123")
	require.NoError(t, err)

	_, err = us.ResolveToken(ctx, first)
	assert.Error(t, err)
	_, err = us.ResolveToken(ctx, second)
	assert.NoError(t, err)
}

func TestLogout(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	us := NewUserService()

	userID, err := us.Register(ctx, &models.User{Nickname: "jdoe", Name: "John", Password: "secret123"})
	require.NoError(t, err)

	token, _, err := us.Login(ctx, "jdoe", "secret123")
	require.NoError(t, err)

	require.NoError(t, us.Logout(ctx, userID))

	_, err = us.ResolveToken(ctx, token)
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	us := NewUserService()

	user := createTestUser(t, "Original")

	err := us.UpdateProfile(ctx, user.ID, map[string]interface{}{
		"name":     "Renamed",
		"bio":      "hello",
		"nickname": "hacked", // не редактируется
	})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.ORM.First(&stored, user.ID).Error)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, "hello", stored.Bio)
	assert.Equal(t, user.Nickname, stored.Nickname)
}

func TestUpdateProfileNameRequired(t *testing.T) {
	setupTestDB(t)
	us := NewUserService()

	user := createTestUser(t, "Original")

	err := us.UpdateProfile(context.Background(), user.ID, map[string]interface{}{"name": "  "})
	assert.Error(t, err)
}

func TestGetProfileWithFollows(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	us := NewUserService()

	user := createTestUser(t, "Main")
	fan := createTestUser(t, "Fan")
	idol := createTestUser(t, "Idol")

	createFollowEdge(t, fan.ID, user.ID)
	createFollowEdge(t, user.ID, idol.ID)

	profile, err := us.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{fan.ID}, profile.Followers)
	assert.Equal(t, []int64{idol.ID}, profile.Following)
	assert.Equal(t, int64(1), profile.FollowerCount)
	assert.Equal(t, int64(1), profile.FollowingCount)
}

func TestSearchUsersByPrefix(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	us := NewUserService()

	createTestUser(t, "Anna")
	createTestUser(t, "Annette")
	createTestUser(t, "Boris")

	found, err := us.SearchUsers(ctx, "Ann", 0)
	require.NoError(t, err)
	require.Len(t, found, 2)

	found, err = us.SearchUsers(ctx, "Zed", 0)
	require.NoError(t, err)
	assert.Empty(t, found)
}
