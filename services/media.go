package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"pulse/config"
	"pulse/models"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MediaService struct {
	httpClient *http.Client
}

func NewMediaService() *MediaService {
	return &MediaService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// MediaUpload - результат загрузки в CDN
type MediaUpload struct {
	URL  string           `json:"secure_url"`
	Kind models.MediaKind `json:"kind"`
}

// ValidatePostMedia проверяет файл поста до какого-либо сетевого вызова
func (ms *MediaService) ValidatePostMedia(header *multipart.FileHeader) (models.MediaKind, error) {
	maxBytes := int64(10 * 1024 * 1024)
	if config.AppConfig != nil && config.AppConfig.Media.MaxPostBytes > 0 {
		maxBytes = config.AppConfig.Media.MaxPostBytes
	}
	if header.Size > maxBytes {
		return "", errors.New("File size must be less than 10MB")
	}
	contentType := header.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.MediaImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return models.MediaVideo, nil
	default:
		return "", errors.New("Only image and video files are allowed")
	}
}

// ValidateAvatar проверяет аватар: только изображения, лимит меньше
func (ms *MediaService) ValidateAvatar(header *multipart.FileHeader) error {
	maxBytes := int64(2 * 1024 * 1024)
	if config.AppConfig != nil && config.AppConfig.Media.MaxAvatarBytes > 0 {
		maxBytes = config.AppConfig.Media.MaxAvatarBytes
	}
	if header.Size > maxBytes {
		return errors.New("Avatar image must be less than 2MB")
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return errors.New("Only image files are allowed")
	}
	return nil
}

// Upload отправляет уже провалидированный файл в CDN и возвращает URL,
// который хранится на документе как есть
func (ms *MediaService) Upload(header *multipart.FileHeader, kind models.MediaKind) (*MediaUpload, error) {
	if config.AppConfig == nil || config.AppConfig.Media.UploadURL == "" {
		return nil, errors.New("media upload is not configured")
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	objectName := uuid.NewString() + filepath.Ext(header.Filename)
	part, err := writer.CreateFormFile("file", objectName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, config.AppConfig.Media.UploadURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := ms.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media upload failed with status %d", resp.StatusCode)
	}

	var upload MediaUpload
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if upload.URL == "" {
		return nil, errors.New("upload response missing secure_url")
	}
	upload.Kind = kind
	return &upload, nil
}
