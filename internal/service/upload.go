package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

type UploadService struct {
	dir       string
	urlPrefix string
	maxBytes  int64
}

func NewUploadService(dir, urlPrefix string, maxBytes int64) *UploadService {
	return &UploadService{dir: dir, urlPrefix: urlPrefix, maxBytes: maxBytes}
}

var imageExts = map[string]string{
	"image/jpeg":   ".jpg",
	"image/png":    ".png",
	"image/gif":    ".gif",
	"image/webp":   ".webp",
	"image/bmp":    ".bmp",
	"image/x-icon": ".ico",
	"image/avif":   ".avif",
}

// SaveImage checks the sniffed content type and size of an uploaded file,
// stores it under a random name and returns its public URL.
func (s *UploadService) SaveImage(_ context.Context, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", errorf(ErrInvalidInput, "file is required")
	}
	if fh.Size > s.maxBytes {
		return "", errorf(ErrFileTooLarge, "file exceeds %d bytes", s.maxBytes)
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	// The stored extension comes from the sniffed type only; the client's
	// filename never reaches disk.
	ext, ok := imageExts[http.DetectContentType(head[:n])]
	if !ok {
		return "", ErrInvalidFile
	}
	name := uuid.NewString() + ext

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head[:n]), io.LimitReader(src, s.maxBytes+1-int64(n))))
	if err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if written > s.maxBytes {
		_ = os.Remove(dst.Name())
		return "", errorf(ErrFileTooLarge, "file exceeds %d bytes", s.maxBytes)
	}
	return path.Join(s.urlPrefix, name), nil
}
