// Package media stores uploaded product images on local disk and serves
// them under a configurable URL prefix.
package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".gif":  {},
}

// Upload is the stored file descriptor returned to clients.
type Upload struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// Service writes uploads into Dir and maps them onto BaseURL.
type Service struct {
	Dir      string
	BaseURL  string
	MaxBytes int64
}

// NewService ensures the upload directory exists.
func NewService(dir, baseURL string, maxBytes int64) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Service{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/"), MaxBytes: maxBytes}, nil
}

// Store persists one multipart file under a random name, keeping the
// original extension.
func (s *Service) Store(file multipart.File, header *multipart.FileHeader) (Upload, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return Upload{}, fmt.Errorf("media: unsupported file type %q", ext)
	}
	if s.MaxBytes > 0 && header.Size > s.MaxBytes {
		return Upload{}, fmt.Errorf("media: file exceeds %d bytes", s.MaxBytes)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return Upload{}, fmt.Errorf("create upload: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(dst.Name())
		return Upload{}, fmt.Errorf("write upload: %w", err)
	}
	return Upload{FileName: name, URL: s.BaseURL + "/" + name, Size: written}, nil
}

// Remove deletes a previously stored file. Unknown names are not an error.
func (s *Service) Remove(fileName string) error {
	clean := filepath.Base(fileName)
	if clean == "." || clean == ".." || clean == "" {
		return fmt.Errorf("media: invalid file name %q", fileName)
	}
	err := os.Remove(filepath.Join(s.Dir, clean))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
