package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"pulse/api/routes"
	"pulse/db"
	"pulse/models"
	"pulse/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupAPIRouter поднимает приложение на SQLite в памяти
func setupAPIRouter(t *testing.T) *gin.Engine {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))
	db.ORM = database

	services.RedisClient = nil
	services.QueueServiceInstance = nil

	gin.SetMode(gin.TestMode)
	router := gin.New()
	routes.PublicApi(router)
	return router
}

func seedUser(t *testing.T, name string) *models.User {
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

func seedPost(t *testing.T, userID int64, content string, createdAt time.Time) *models.Post {
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

// doJSON выполняет запрос с JSON-телом от имени пользователя (0 = аноним)
func doJSON(router *gin.Engine, method, url string, payload interface{}, asUser int64) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if asUser > 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(asUser, 10))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLoginAPI(t *testing.T) {
	router := setupAPIRouter(t)

	w := doJSON(router, "POST", "/api/v1/auth/register", map[string]string{
		"nickname": "jdoe",
		"password": "secret123",
		"name":     "John Doe",
	}, 0)
	require.Equal(t, http.StatusCreated, w.Code)

	// Повторная регистрация того же ника
	w = doJSON(router, "POST", "/api/v1/auth/register", map[string]string{
		"nickname": "jdoe",
		"password": "other",
		"name":     "Jane",
	}, 0)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "POST", "/api/v1/auth/login", map[string]string{
		"nickname": "jdoe",
		"password": "secret123",
	}, 0)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "jdoe", resp.User.Nickname)

	w = doJSON(router, "POST", "/api/v1/auth/login", map[string]string{
		"nickname": "jdoe",
		"password": "wrong",
	}, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	router := setupAPIRouter(t)

	w := doJSON(router, "POST", "/api/v1/posts", map[string]string{"content": "hello"}, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndGetPost(t *testing.T) {
	router := setupAPIRouter(t)
	author := seedUser(t, "Author")

	w := doJSON(router, "POST", "/api/v1/posts", map[string]string{"content": "hello world"}, author.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotZero(t, created.ID)

	// Пустой пост отклоняется
	w = doJSON(router, "POST", "/api/v1/posts", map[string]string{"content": "  "}, author.ID)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Чтение поста публично и засчитывает просмотр
	w = doJSON(router, "GET", fmt.Sprintf("/api/v1/posts/%d", created.ID), nil, 0)
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Post
	require.NoError(t, db.ORM.First(&stored, created.ID).Error)
	assert.Equal(t, int64(1), stored.ViewCount)

	w = doJSON(router, "GET", "/api/v1/posts/9999", nil, 0)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnonymousFeedCapped(t *testing.T) {
	router := setupAPIRouter(t)
	author := seedUser(t, "Author")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		seedPost(t, author.ID, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Second))
	}

	// Аноним с mode=following получает общую ленту
	w := doJSON(router, "GET", "/api/v1/feed?mode=following", nil, 0)
	require.Equal(t, http.StatusOK, w.Code)

	var feed models.FeedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	assert.Len(t, feed.Posts, 20)
	assert.True(t, feed.HasMore)
	assert.Equal(t, "post 24", feed.Posts[0].Content)
}

func TestLikeAndCommentAPI(t *testing.T) {
	router := setupAPIRouter(t)
	author := seedUser(t, "Author")
	fan := seedUser(t, "Fan")
	post := seedPost(t, author.ID, "likeable", time.Now())

	w := doJSON(router, "POST", fmt.Sprintf("/api/v1/posts/%d/like", post.ID), nil, fan.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked": true}`, w.Body.String())

	w = doJSON(router, "POST", fmt.Sprintf("/api/v1/posts/%d/like", post.ID), nil, fan.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked": false}`, w.Body.String())

	w = doJSON(router, "POST", fmt.Sprintf("/api/v1/posts/%d/comments", post.ID),
		map[string]string{"text": "great"}, fan.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), nil, 0)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Comments []models.Comment `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "great", resp.Comments[0].Text)
}

func TestFollowAPI(t *testing.T) {
	router := setupAPIRouter(t)
	fan := seedUser(t, "Fan")
	idol := seedUser(t, "Idol")

	w := doJSON(router, "POST", fmt.Sprintf("/api/v1/follow/%d", idol.ID), nil, fan.ID)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/api/v1/user/%d/followers", idol.ID), nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), strconv.FormatInt(fan.ID, 10))

	// Подписка на себя отклоняется
	w = doJSON(router, "POST", fmt.Sprintf("/api/v1/follow/%d", fan.ID), nil, fan.ID)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "DELETE", fmt.Sprintf("/api/v1/follow/%d", idol.ID), nil, fan.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var edges int64
	db.ORM.Model(&models.Follow{}).Count(&edges)
	assert.Equal(t, int64(0), edges)
}
