package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"jobportal/internal/metrics"
	"jobportal/internal/storage"
)

// 上传对象的目录前缀。
const (
	kindAvatar      = "avatars"
	kindResume      = "resumes"
	kindCompanyLogo = "company-logos"
)

var errFileTooLarge = errors.New("file too large")

// ObjectStorage is the subset of *storage.Client used by handlers.
type ObjectStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	PublicURL(objectKey string) string
	DeleteObject(ctx context.Context, objectKey string) error
	ObjectKeyFromURL(publicURL string) (string, bool)
}

// FileScanner rejects infected uploads with storage.ErrInfected.
type FileScanner interface {
	Scan(r io.Reader) error
}

type uploadedFile struct {
	URL          string
	OriginalName string
}

// Uploader 负责大小校验、病毒扫描与对象存储上传。
type Uploader struct {
	storage  ObjectStorage
	scanner  FileScanner
	maxBytes int64
}

func NewUploader(objectStorage ObjectStorage, scanner FileScanner, maxBytes int64) *Uploader {
	return &Uploader{storage: objectStorage, scanner: scanner, maxBytes: maxBytes}
}

// FromForm uploads the multipart file in field, if any. A missing file yields (nil, nil).
func (u *Uploader) FromForm(c *gin.Context, field, kind string, userID uint) (*uploadedFile, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("read form file %s: %w", field, err)
	}

	if u.maxBytes > 0 && header.Size > u.maxBytes {
		metrics.ObserveUpload(kind, metrics.ResultRejected)
		return nil, errFileTooLarge
	}

	if u.scanner != nil {
		if err := scanFile(u.scanner, header); err != nil {
			if errors.Is(err, storage.ErrInfected) {
				metrics.ObserveUpload(kind, metrics.ResultRejected)
			} else {
				metrics.ObserveUpload(kind, metrics.ResultFailed)
			}
			return nil, err
		}
	}

	reader, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open form file %s: %w", field, err)
	}
	defer reader.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	objectKey := fmt.Sprintf("%s/%d/%s%s", kind, userID, uuid.NewString(), ext)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := u.storage.UploadFile(c.Request.Context(), objectKey, reader, header.Size, contentType); err != nil {
		metrics.ObserveUpload(kind, metrics.ResultFailed)
		return nil, fmt.Errorf("upload %s: %w", objectKey, err)
	}

	metrics.ObserveUpload(kind, metrics.ResultOK)
	return &uploadedFile{URL: u.storage.PublicURL(objectKey), OriginalName: header.Filename}, nil
}

// Discard 尽力删除被替换的旧对象，失败只记录日志。
func (u *Uploader) Discard(ctx context.Context, logger *slog.Logger, publicURL string) {
	if publicURL == "" {
		return
	}
	key, ok := u.storage.ObjectKeyFromURL(publicURL)
	if !ok {
		return
	}
	if err := u.storage.DeleteObject(ctx, key); err != nil {
		logger.Warn("delete replaced object failed", slog.String("object_key", key), slog.Any("error", err))
	}
}

func scanFile(scanner FileScanner, header *multipart.FileHeader) error {
	reader, err := header.Open()
	if err != nil {
		return fmt.Errorf("open file for scan: %w", err)
	}
	defer reader.Close()
	return scanner.Scan(reader)
}

// writeUploadError 把上传错误映射为响应；返回 false 表示没有错误。
func writeUploadError(c *gin.Context, logger *slog.Logger, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, errFileTooLarge):
		BadRequest(c, "File is too large.")
	case errors.Is(err, storage.ErrInfected):
		logger.Warn("infected upload rejected")
		BadRequest(c, "Malicious file detected.")
	default:
		logger.Error("upload failed", slog.Any("error", err))
		Internal(c)
	}
	return true
}
