package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"pulse/db"
	"pulse/models"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
	"gorm.io/gorm"
)

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

func verifyPassword(password, stored string) error {
	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return errors.New("invalid password format")
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return err
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	if hex.EncodeToString(hash) != parts[1] {
		return errors.New("invalid password")
	}
	return nil
}

// Register создает нового пользователя
func (us *UserService) Register(ctx context.Context, user *models.User) (int64, error) {
	if user.Nickname == "" || user.Password == "" {
		return 0, errors.New("nickname or password is empty")
	}
	if user.Name == "" {
		return 0, errors.New("name is required")
	}

	var alreadyExists int64
	err := db.GetReadOnlyDB(ctx).Model(&models.User{}).Where("nickname = ?", user.Nickname).Count(&alreadyExists).Error
	if err != nil {
		return 0, err
	}
	if alreadyExists > 0 {
		return 0, errors.New("user already exists")
	}

	passwordHash, err := hashPassword(user.Password)
	if err != nil {
		return 0, err
	}
	user.Password = passwordHash

	if err := db.GetWriteDB(ctx).Create(user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Login проверяет пароль, выдает новый токен и проставляет отметки сессии.
// last_login и last_active обновляются на каждом входе.
func (us *UserService) Login(ctx context.Context, nickname, password string) (string, *models.User, error) {
	var storedUser models.User
	err := db.GetWriteDB(ctx).Where("nickname = ?", nickname).First(&storedUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errors.New("invalid credentials")
		}
		return "", nil, err
	}

	if err := verifyPassword(password, storedUser.Password); err != nil {
		return "", nil, errors.New("invalid credentials")
	}

	// Удаляем старые токены (если они есть)
	_ = us.Logout(ctx, storedUser.ID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", nil, err
	}
	token := hex.EncodeToString(tokenBytes)

	err = db.GetWriteDB(ctx).Create(&models.UserTokens{
		UserID: storedUser.ID,
		Token:  token,
	}).Error
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	err = db.GetWriteDB(ctx).Model(&models.User{}).Where("id = ?", storedUser.ID).
		Updates(map[string]interface{}{"last_login": now, "last_active": now}).Error
	if err != nil {
		return "", nil, err
	}
	storedUser.LastLogin = now
	storedUser.LastActive = now

	return token, &storedUser, nil
}

// Logout удаляет все токены пользователя
func (us *UserService) Logout(ctx context.Context, userID int64) error {
	return db.GetWriteDB(ctx).Where("user_id = ?", userID).Delete(&models.UserTokens{}).Error
}

// ResolveToken возвращает владельца токена
func (us *UserService) ResolveToken(ctx context.Context, token string) (int64, error) {
	var userToken models.UserTokens
	err := db.GetReadOnlyDB(ctx).Where("token = ?", token).First(&userToken).Error
	if err != nil {
		return 0, errors.New("invalid token")
	}
	return userToken.UserID, nil
}

// TouchLastActive проставляет last_active на восстановлении сессии
func (us *UserService) TouchLastActive(ctx context.Context, userID int64) {
	err := db.GetWriteDB(ctx).Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("last_active", time.Now()).Error
	if err != nil {
		fmt.Println("failed to touch last_active:", err)
	}
}

// GetProfile возвращает пользователя вместе со списками подписок
func (us *UserService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}

	var followers, following []int64
	err = db.GetReadOnlyDB(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", userID).Pluck("follower_id", &followers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	err = db.GetReadOnlyDB(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).Pluck("followee_id", &following).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}

	return &models.Profile{
		User:           user,
		Followers:      followers,
		Following:      following,
		FollowerCount:  int64(len(followers)),
		FollowingCount: int64(len(following)),
	}, nil
}

// UpdateProfile обновляет редактируемые поля профиля
func (us *UserService) UpdateProfile(ctx context.Context, userID int64, updates map[string]interface{}) error {
	allowed := map[string]bool{
		"name": true, "bio": true, "location": true, "website": true,
		"avatar": true, "notify_on_engagement": true, "private_profile": true,
	}
	fields := make(map[string]interface{})
	for k, v := range updates {
		if allowed[k] {
			fields[k] = v
		}
	}
	if name, ok := fields["name"]; ok {
		if s, _ := name.(string); strings.TrimSpace(s) == "" {
			return errors.New("name is required")
		}
	}
	if len(fields) == 0 {
		return errors.New("no updatable fields")
	}
	return db.GetWriteDB(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(fields).Error
}

// SearchUsers ищет пользователей по префиксу имени
func (us *UserService) SearchUsers(ctx context.Context, prefix string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	var users []models.User
	err := db.GetReadOnlyDB(ctx).
		Where("name LIKE ? OR nickname LIKE ?", prefix+"%", prefix+"%").
		Order("name").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}
