package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"pulse/db"
	"pulse/models"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	FEED_CACHE_TTL  = 24 * time.Hour // TTL для кеша ленты
	MAX_FEED_SIZE   = 1000           // Максимальное количество постов в ленте
	FEED_KEY_PREFIX = "user_feed:"   // Префикс для ключей ленты в Redis
	POST_KEY_PREFIX = "post:"        // Префикс для кеша постов

	DefaultFeedLimit = 20 // Лимит для лент all и following
	TrendingLimit    = 10 // Лимит для трендовой выборки
)

// FeedMode - вариант запроса ленты
type FeedMode string

const (
	FeedAll       FeedMode = "all"
	FeedFollowing FeedMode = "following"
	FeedTrending  FeedMode = "trending"
)

type PostService struct{}

func NewPostService() *PostService {
	return &PostService{}
}

// CreatePost создает новый пост и обновляет ленты подписчиков
func (ps *PostService) CreatePost(ctx context.Context, userID int64, content string, mediaURL string, mediaKind models.MediaKind) (*models.Post, error) {
	if strings.TrimSpace(content) == "" && mediaURL == "" {
		return nil, errors.New("post is empty")
	}
	if mediaURL != "" && mediaKind != models.MediaImage && mediaKind != models.MediaVideo {
		return nil, errors.New("invalid media kind")
	}

	post := &models.Post{
		UserID:    userID,
		Content:   strings.TrimSpace(content),
		MediaURL:  mediaURL,
		MediaKind: mediaKind,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err := db.GetWriteDB(ctx).Create(post).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	// Добавляем задачу обновления лент в очередь
	if QueueServiceInstance != nil && RedisClient != nil {
		go QueueServiceInstance.EnqueueFeedUpdate(context.Background(), userID, *post, "create")
	} else {
		// Fallback - обновляем ленты синхронно, если очередь не инициализирована
		go ps.updateFollowerFeeds(context.Background(), userID, post)
	}

	return post, nil
}

// GetPost возвращает один пост
func (ps *PostService) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	var post models.Post
	err := db.GetReadOnlyDB(ctx).First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("post not found")
		}
		return nil, err
	}
	return &post, nil
}

// RegisterView атомарно увеличивает счетчик просмотров
func (ps *PostService) RegisterView(ctx context.Context, postID int64) error {
	return db.GetWriteDB(ctx).Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// GetFeed возвращает ленту в выбранном режиме.
// Неавторизованный viewer (viewerID == 0) получает только режим all.
func (ps *PostService) GetFeed(ctx context.Context, viewerID int64, mode FeedMode, lastID int64, limit int) (*models.FeedResponse, error) {
	switch mode {
	case FeedFollowing:
		if viewerID == 0 {
			mode = FeedAll
		}
	case FeedTrending:
		if limit <= 0 || limit > TrendingLimit {
			limit = TrendingLimit
		}
	default:
		mode = FeedAll
	}
	if limit <= 0 || limit > DefaultFeedLimit {
		limit = DefaultFeedLimit
	}

	if mode == FeedFollowing {
		feedKey := fmt.Sprintf("%s%d", FEED_KEY_PREFIX, viewerID)

		// Пытаемся получить из кеша
		feedPosts, err := ps.getFeedFromCache(ctx, feedKey, lastID, limit)
		if err == nil && len(feedPosts) > 0 {
			return &models.FeedResponse{
				Posts:   feedPosts,
				HasMore: len(feedPosts) == limit,
				LastID:  getLastID(feedPosts),
			}, nil
		}
	}

	feedPosts, err := ps.buildFeedFromDB(ctx, viewerID, mode, lastID, limit)
	if err != nil {
		return nil, err
	}

	if mode == FeedFollowing {
		feedKey := fmt.Sprintf("%s%d", FEED_KEY_PREFIX, viewerID)
		go ps.cacheFeed(context.Background(), feedKey, feedPosts)
	}

	return &models.FeedResponse{
		Posts:   feedPosts,
		HasMore: len(feedPosts) == limit,
		LastID:  getLastID(feedPosts),
	}, nil
}

// buildFeedFromDB строит ленту из базы данных
func (ps *PostService) buildFeedFromDB(ctx context.Context, viewerID int64, mode FeedMode, lastID int64, limit int) ([]models.FeedPost, error) {
	query := db.GetReadOnlyDB(ctx).
		Table("posts p").
		Select("p.id, p.user_id, u.name as user_name, u.avatar as user_avatar, p.content, p.media_url, p.media_kind, p.like_count, p.comment_count, p.created_at").
		Joins("JOIN users u ON p.user_id = u.id").
		Limit(limit)

	switch mode {
	case FeedFollowing:
		// Автор - сам пользователь или любой из его подписок
		authorIDs := db.GetReadOnlyDB(ctx).Session(&gorm.Session{NewDB: true}).
			Model(&models.Follow{}).Select("followee_id").Where("follower_id = ?", viewerID)
		query = query.Where("p.user_id = ? OR p.user_id IN (?)", viewerID, authorIDs).
			Order("p.created_at DESC, p.id DESC")
		if lastID > 0 {
			query = query.Where("p.id < ?", lastID)
		}
	case FeedTrending:
		query = query.Order("p.like_count DESC, p.id DESC")
	default:
		query = query.Order("p.created_at DESC, p.id DESC")
		if lastID > 0 {
			query = query.Where("p.id < ?", lastID)
		}
	}

	var feedPosts []models.FeedPost
	err := query.Scan(&feedPosts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get feed posts: %w", err)
	}

	return feedPosts, nil
}

// getFeedFromCache получает ленту из Redis кеша
func (ps *PostService) getFeedFromCache(ctx context.Context, feedKey string, lastID int64, limit int) ([]models.FeedPost, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis not available")
	}

	// Используем Redis Sorted Set для хранения ленты (score = timestamp)
	var start, stop int64 = 0, int64(limit - 1)

	if lastID > 0 {
		// Находим позицию lastID в отсортированном множестве
		rank := RedisClient.ZRevRank(ctx, feedKey, strconv.FormatInt(lastID, 10)).Val()
		start = rank + 1
		stop = start + int64(limit) - 1
	}

	postIDs, err := RedisClient.ZRevRange(ctx, feedKey, start, stop).Result()
	if err != nil {
		return nil, err
	}

	if len(postIDs) == 0 {
		return []models.FeedPost{}, nil
	}

	// Получаем данные постов из кеша
	var feedPosts []models.FeedPost
	pipe := RedisClient.Pipeline()

	cmds := make([]*redis.StringCmd, len(postIDs))
	for i, postID := range postIDs {
		cmds[i] = pipe.Get(ctx, POST_KEY_PREFIX+postID)
	}

	_, err = pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return nil, err
	}

	for _, cmd := range cmds {
		val, err := cmd.Result()
		if err != nil {
			continue
		}

		var feedPost models.FeedPost
		if err := json.Unmarshal([]byte(val), &feedPost); err == nil {
			feedPosts = append(feedPosts, feedPost)
		}
	}

	return feedPosts, nil
}

// cacheFeed кеширует ленту в Redis
func (ps *PostService) cacheFeed(ctx context.Context, feedKey string, posts []models.FeedPost) {
	if len(posts) == 0 || RedisClient == nil {
		return
	}

	pipe := RedisClient.Pipeline()

	// Очищаем старую ленту
	pipe.Del(ctx, feedKey)

	// Добавляем посты в sorted set (score = unix timestamp)
	for _, post := range posts {
		score := float64(post.CreatedAt.Unix())
		pipe.ZAdd(ctx, feedKey, &redis.Z{
			Score:  score,
			Member: strconv.FormatInt(post.ID, 10),
		})

		// Кешируем сам пост
		postKey := fmt.Sprintf("%s%d", POST_KEY_PREFIX, post.ID)
		postData, _ := json.Marshal(post)
		pipe.Set(ctx, postKey, postData, FEED_CACHE_TTL)
	}

	// Ограничиваем размер ленты
	pipe.ZRemRangeByRank(ctx, feedKey, 0, -MAX_FEED_SIZE-1)

	// Устанавливаем TTL для ленты
	pipe.Expire(ctx, feedKey, FEED_CACHE_TTL)

	pipe.Exec(ctx)
}

// updateFollowerFeeds обновляет ленты подписчиков при создании нового поста
func (ps *PostService) updateFollowerFeeds(ctx context.Context, userID int64, post *models.Post) {
	var followerIDs []int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", userID).Pluck("follower_id", &followerIDs).Error
	if err != nil {
		log.Printf("ERROR: Failed to get followers for userID=%d: %v", userID, err)
		return
	}

	var user models.User
	if err := db.GetReadOnlyDB(ctx).First(&user, userID).Error; err != nil {
		log.Printf("ERROR: Failed to get user data for userID=%d: %v", userID, err)
		return
	}

	feedPost := models.FeedPost{
		ID:         post.ID,
		UserID:     post.UserID,
		UserName:   user.Name,
		UserAvatar: user.Avatar,
		Content:    post.Content,
		MediaURL:   post.MediaURL,
		MediaKind:  string(post.MediaKind),
		CreatedAt:  post.CreatedAt,
	}

	// Свою ленту автор тоже видит
	recipients := append(followerIDs, userID)
	for _, recipientID := range recipients {
		ps.addPostToUserFeed(ctx, recipientID, feedPost)
		EmitUserEvent(ctx, recipientID, EventFeedPosted, feedPost)
	}
}

// addPostToUserFeed добавляет пост в ленту конкретного пользователя
func (ps *PostService) addPostToUserFeed(ctx context.Context, userID int64, post models.FeedPost) {
	if RedisClient == nil {
		return
	}

	feedKey := fmt.Sprintf("%s%d", FEED_KEY_PREFIX, userID)
	postKey := fmt.Sprintf("%s%d", POST_KEY_PREFIX, post.ID)

	pipe := RedisClient.Pipeline()

	score := float64(post.CreatedAt.Unix())
	pipe.ZAdd(ctx, feedKey, &redis.Z{
		Score:  score,
		Member: strconv.FormatInt(post.ID, 10),
	})

	postData, err := json.Marshal(post)
	if err != nil {
		fmt.Println("failed to marshal post for caching:", err)
		return
	}
	pipe.Set(ctx, postKey, postData, FEED_CACHE_TTL)

	pipe.ZRemRangeByRank(ctx, feedKey, 0, -MAX_FEED_SIZE-1)
	pipe.Expire(ctx, feedKey, FEED_CACHE_TTL)

	pipe.Exec(ctx)
}

// InvalidateUserFeed инвалидирует кеш ленты пользователя
func (ps *PostService) InvalidateUserFeed(ctx context.Context, userID int64) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}
	feedKey := fmt.Sprintf("%s%d", FEED_KEY_PREFIX, userID)
	return RedisClient.Del(ctx, feedKey).Err()
}

// RebuildUserFeedFromDB перестраивает кеш ленты пользователя из БД
func (ps *PostService) RebuildUserFeedFromDB(ctx context.Context, userID int64) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}

	feedKey := fmt.Sprintf("%s%d", FEED_KEY_PREFIX, userID)
	RedisClient.Del(ctx, feedKey)

	feedPosts, err := ps.buildFeedFromDB(ctx, userID, FeedFollowing, 0, MAX_FEED_SIZE)
	if err != nil {
		return err
	}

	ps.cacheFeed(ctx, feedKey, feedPosts)
	return nil
}

// DeletePost удаляет пост и убирает его из лент подписчиков.
// asModerator обходит проверку владельца (разрешение жалобы).
func (ps *PostService) DeletePost(ctx context.Context, userID int64, postID int64, asModerator bool) error {
	var post models.Post
	query := db.GetWriteDB(ctx).Where("id = ?", postID)
	if !asModerator {
		query = query.Where("user_id = ?", userID)
	}
	err := query.First(&post).Error
	if err != nil {
		return fmt.Errorf("post not found or access denied: %w", err)
	}

	err = db.GetWriteDB(ctx).Delete(&post).Error
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if QueueServiceInstance != nil && RedisClient != nil {
		go QueueServiceInstance.EnqueueFeedUpdate(context.Background(), post.UserID, post, "delete")
	} else {
		go ps.removePostFromAllFeeds(context.Background(), post.UserID, postID)
	}

	return nil
}

func getLastID(posts []models.FeedPost) int64 {
	if len(posts) == 0 {
		return 0
	}
	return posts[len(posts)-1].ID
}

// removePostFromAllFeeds удаляет пост из лент всех подписчиков (fallback метод)
func (ps *PostService) removePostFromAllFeeds(ctx context.Context, userID int64, postID int64) {
	if RedisClient == nil {
		return
	}

	var followerIDs []int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", userID).Pluck("follower_id", &followerIDs).Error
	if err != nil {
		return
	}

	for _, followerID := range append(followerIDs, userID) {
		ps.removePostFromUserFeed(ctx, followerID, postID)
	}
}

// removePostFromUserFeed удаляет пост из ленты конкретного пользователя
func (ps *PostService) removePostFromUserFeed(ctx context.Context, userID int64, postID int64) {
	if RedisClient == nil {
		return
	}

	feedKey := fmt.Sprintf("%s%d", FEED_KEY_PREFIX, userID)
	postKey := fmt.Sprintf("%s%d", POST_KEY_PREFIX, postID)

	pipe := RedisClient.Pipeline()
	pipe.ZRem(ctx, feedKey, strconv.FormatInt(postID, 10))
	pipe.Del(ctx, postKey)
	pipe.Exec(ctx)
}
