package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pulse/db"
	"pulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostValidation(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()

	author := createTestUser(t, "Author")

	_, err := ps.CreatePost(ctx, author.ID, "   ", "", "")
	assert.Error(t, err)

	_, err = ps.CreatePost(ctx, author.ID, "caption", "https://cdn.example/x.bin", "archive")
	assert.Error(t, err)

	post, err := ps.CreatePost(ctx, author.ID, "plain text", "", "")
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "plain text", post.Content)
}

func TestRegisterView(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()

	author := createTestUser(t, "Author")
	post := createPostAt(t, author.ID, "watched", time.Now())

	require.NoError(t, ps.RegisterView(ctx, post.ID))
	require.NoError(t, ps.RegisterView(ctx, post.ID))

	var stored models.Post
	require.NoError(t, db.ORM.First(&stored, post.ID).Error)
	assert.Equal(t, int64(2), stored.ViewCount)
}

func TestGetFeedAllCapAndOrder(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()

	author := createTestUser(t, "Author")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		createPostAt(t, author.ID, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Second))
	}

	// Анонимный viewer получает ленту all, не больше 20 постов
	feed, err := ps.GetFeed(ctx, 0, FeedAll, 0, 0)
	require.NoError(t, err)
	require.Len(t, feed.Posts, DefaultFeedLimit)
	assert.True(t, feed.HasMore)

	// Новые первыми
	assert.Equal(t, "post 24", feed.Posts[0].Content)
	for i := 1; i < len(feed.Posts); i++ {
		assert.True(t, feed.Posts[i-1].CreatedAt.After(feed.Posts[i].CreatedAt))
	}

	// Вторая страница через last_id
	next, err := ps.GetFeed(ctx, 0, FeedAll, feed.LastID, 0)
	require.NoError(t, err)
	require.Len(t, next.Posts, 5)
	assert.Equal(t, "post 4", next.Posts[0].Content)
	assert.False(t, next.HasMore)
}

func TestGetFeedFollowing(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()

	viewer := createTestUser(t, "Viewer")
	friend := createTestUser(t, "Friend")
	stranger := createTestUser(t, "Stranger")

	createFollowEdge(t, viewer.ID, friend.ID)

	base := time.Now().Add(-time.Hour)
	createPostAt(t, viewer.ID, "mine", base)
	createPostAt(t, friend.ID, "from friend", base.Add(time.Minute))
	createPostAt(t, stranger.ID, "from stranger", base.Add(2*time.Minute))

	feed, err := ps.GetFeed(ctx, viewer.ID, FeedFollowing, 0, 0)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 2)

	// Только свои посты и посты подписок, чужие не попадают
	assert.Equal(t, "from friend", feed.Posts[0].Content)
	assert.Equal(t, "mine", feed.Posts[1].Content)
}

func TestGetFeedFollowingAnonymousFallsBackToAll(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()

	author := createTestUser(t, "Author")
	createPostAt(t, author.ID, "visible to everyone", time.Now())

	feed, err := ps.GetFeed(ctx, 0, FeedFollowing, 0, 0)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, "visible to everyone", feed.Posts[0].Content)
}

func TestGetFeedTrending(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()

	author := createTestUser(t, "Author")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		post := createPostAt(t, author.ID, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Second))
		require.NoError(t, db.ORM.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("like_count", i).Error)
	}

	feed, err := ps.GetFeed(ctx, 0, FeedTrending, 0, 0)
	require.NoError(t, err)
	require.Len(t, feed.Posts, TrendingLimit)

	// Сортировка по числу лайков, а не по времени
	assert.Equal(t, int64(11), feed.Posts[0].LikeCount)
	for i := 1; i < len(feed.Posts); i++ {
		assert.GreaterOrEqual(t, feed.Posts[i-1].LikeCount, feed.Posts[i].LikeCount)
	}
}

func TestDeletePostOwnerOnly(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()

	author := createTestUser(t, "Author")
	other := createTestUser(t, "Other")
	post := createPostAt(t, author.ID, "mine", time.Now())

	// Чужой пост удалить нельзя
	assert.Error(t, ps.DeletePost(ctx, other.ID, post.ID, false))

	require.NoError(t, ps.DeletePost(ctx, author.ID, post.ID, false))

	var count int64
	db.ORM.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeletePostAsModerator(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()

	author := createTestUser(t, "Author")
	post := createPostAt(t, author.ID, "reported", time.Now())

	require.NoError(t, ps.DeletePost(ctx, 0, post.ID, true))

	var count int64
	db.ORM.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
