package domain

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedVideoType = errors.New("unsupported video type")
	ErrEmptyVideo           = errors.New("video file is empty")
)

// Маппинг расширений на MIME типы
var extToContentType = map[string]string{
	".mp4": "video/mp4",
	".mov": "video/quicktime",
	".avi": "video/x-msvideo",
}

// DetectVideoContentType определяет MIME тип видео по заголовку и имени файла.
// Принимаются только форматы mp4, mov и avi.
func DetectVideoContentType(fileName, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	byExt, ok := extToContentType[ext]
	if !ok {
		return "", ErrUnsupportedVideoType
	}

	if contentType == "" || contentType == "application/octet-stream" {
		return byExt, nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "video/") {
		return "", ErrUnsupportedVideoType
	}
	return mediaType, nil
}
