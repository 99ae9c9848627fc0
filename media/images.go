package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MaxImageSize = 5 << 20

var (
	ErrNoBackend = errors.New("image uploads are disabled")
	ErrNotImage  = errors.New("upload a valid image")
	ErrTooLarge  = errors.New("image is too large")
	ErrNotFound  = errors.New("image not found")
)

// Backend - куда складываются байты картинок
type Backend interface {
	Put(ctx context.Context, key string, contentType string, data []byte) error
	Get(ctx context.Context, key string) (io.ReadCloser, int64, string, error)
	Remove(ctx context.Context, key string) error
}

// Images проверяет загрузки и выдает ключи вида posts/<uuid><ext>
type Images struct {
	backend   Backend
	publicURL string
}

func NewImages(backend Backend, publicURL string) *Images {
	return &Images{backend: backend, publicURL: strings.TrimSuffix(publicURL, "/")}
}

func (i *Images) Enabled() bool {
	return i != nil && i.backend != nil
}

// Save читает загрузку, проверяет что это картинка и сохраняет ее
func (i *Images) Save(ctx context.Context, r io.Reader) (string, error) {
	if !i.Enabled() {
		return "", ErrNoBackend
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return "", ErrTooLarge
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", ErrNotImage
	}

	key := "posts/" + uuid.NewString() + mtype.Extension()
	if err := i.backend.Put(ctx, key, mtype.String(), data); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return key, nil
}

// Open отдает сохраненную картинку для раздачи по /media/
func (i *Images) Open(ctx context.Context, key string) (io.ReadCloser, int64, string, error) {
	if !i.Enabled() {
		return nil, 0, "", ErrNotFound
	}
	return i.backend.Get(ctx, key)
}

// Remove удаляет ранее сохраненную картинку; пустой ключ игнорируется
func (i *Images) Remove(ctx context.Context, key string) error {
	if !i.Enabled() || key == "" {
		return nil
	}
	return i.backend.Remove(ctx, key)
}

// URL - публичная ссылка на картинку для шаблонов
func (i *Images) URL(key string) string {
	if key == "" {
		return ""
	}
	if i == nil || i.publicURL == "" {
		return "/media/" + key
	}
	return i.publicURL + "/" + key
}
