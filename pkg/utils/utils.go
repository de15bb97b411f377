package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ValidateEvidenceFile(file *multipart.FileHeader) error
	ReadFileBytes(file *multipart.FileHeader) ([]byte, error)
	ConvertFileToBase64(file multipart.File) (string, error)
}

type utils struct {
	maxImageSize    int64
	maxEvidenceSize int64
}

func New() IUtils {
	return &utils{
		maxImageSize:    5 * 1024 * 1024,
		maxEvidenceSize: 30 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file uploaded")
	}

	if file.Size > u.maxImageSize {
		return errors.New("file size exceeds limit")
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return errors.New("uploaded file is not an image")
	}

	return nil
}

// ValidateEvidenceFile accepts selfie images and the short liveness videos
// the capture client records (webm/mp4).
func (u *utils) ValidateEvidenceFile(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file uploaded")
	}

	if file.Size > u.maxEvidenceSize {
		return errors.New("file size exceeds limit")
	}

	contentType := file.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "image/") {
		return nil
	}
	if contentType == "video/webm" || contentType == "video/mp4" {
		return nil
	}

	return errors.New("uploaded file is not an image or supported video")
}

func (u *utils) ReadFileBytes(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(src)
}

func (u *utils) ConvertFileToBase64(file multipart.File) (string, error) {
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(fileBytes), nil
}
