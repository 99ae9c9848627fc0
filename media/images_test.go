package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBackend struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *memoryBackend) Put(_ context.Context, key, contentType string, data []byte) error {
	b.objects[key] = data
	b.types[key] = contentType
	return nil
}

func (b *memoryBackend) Get(_ context.Context, key string) (io.ReadCloser, int64, string, error) {
	data, ok := b.objects[key]
	if !ok {
		return nil, 0, "", ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), b.types[key], nil
}

func (b *memoryBackend) Remove(_ context.Context, key string) error {
	delete(b.objects, key)
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveImage(t *testing.T) {
	backend := newMemoryBackend()
	images := NewImages(backend, "http://cdn.example.com/yatube/")

	key, err := images.Save(context.Background(), bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "posts/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "image/png", backend.types[key])
	assert.Equal(t, "http://cdn.example.com/yatube/"+key, images.URL(key))

	reader, size, contentType, err := images.Open(context.Background(), key)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, int64(len(backend.objects[key])), size)
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, images.Remove(context.Background(), key))
	assert.Empty(t, backend.objects)
	_, _, _, err = images.Open(context.Background(), key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRejectsNonImages(t *testing.T) {
	images := NewImages(newMemoryBackend(), "")

	_, err := images.Save(context.Background(), strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrNotImage)

	big := make([]byte, MaxImageSize+10)
	_, err = images.Save(context.Background(), bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestImagesWithoutBackend(t *testing.T) {
	var images *Images
	assert.False(t, images.Enabled())
	_, err := images.Save(context.Background(), bytes.NewReader(pngBytes(t)))
	assert.ErrorIs(t, err, ErrNoBackend)
	assert.Equal(t, "/media/posts/a.png", images.URL("posts/a.png"))
	_, _, _, err = images.Open(context.Background(), "posts/a.png")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, images.URL(""))

	assert.False(t, NewImages(nil, "").Enabled())
}

func TestNewStorage(t *testing.T) {
	storage, err := New(Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "yatube"})
	require.NoError(t, err)
	assert.NotNil(t, storage)
}
