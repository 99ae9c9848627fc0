package cache

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageCache кэширует отрендеренную страницу целиком.
// Ключ - префикс и id зрителя; номер страницы в ключ не входит, если не включен varyByQuery.
type PageCache struct {
	store       Store
	prefix      string
	varyByQuery bool
	observe     func(hit bool)
}

type Option func(*PageCache)

// WithVaryByQuery добавляет строку запроса в ключ
func WithVaryByQuery(vary bool) Option {
	return func(pc *PageCache) { pc.varyByQuery = vary }
}

// WithObserver вызывается на каждый запрос через кэш (метрики попаданий)
func WithObserver(observe func(hit bool)) Option {
	return func(pc *PageCache) { pc.observe = observe }
}

func NewPageCache(store Store, prefix string, opts ...Option) *PageCache {
	pc := &PageCache{store: store, prefix: prefix}
	for _, opt := range opts {
		opt(pc)
	}
	return pc
}

func (pc *PageCache) Key(viewerID int64, rawQuery string) string {
	key := fmt.Sprintf("%s:u%d", pc.prefix, viewerID)
	if pc.varyByQuery && rawQuery != "" {
		key += "?" + rawQuery
	}
	return key
}

// Clear сбрасывает все закэшированные страницы
func (pc *PageCache) Clear(ctx context.Context) error {
	return pc.store.Clear(ctx, pc.prefix+":")
}

type teeWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *teeWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *teeWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware отдает закэшированный ответ на GET, иначе выполняет обработчик
// и сохраняет ответ 200 без ошибок в c.Errors. viewer возвращает id текущего пользователя (0 для анонима).
func (pc *PageCache) Middleware(viewer func(*gin.Context) int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := pc.Key(viewer(c), c.Request.URL.RawQuery)

		entry, ok, err := pc.store.Get(ctx, key)
		if err != nil {
			log.Printf("ERROR: Page cache lookup failed: %v", err)
		}
		if pc.observe != nil {
			pc.observe(ok)
		}
		if ok {
			c.Data(entry.Status, entry.ContentType, entry.Body)
			c.Abort()
			return
		}

		writer := &teeWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		// Ошибка рендера после записи заголовков оставляет 200 с обрезанным телом
		if writer.Status() != http.StatusOK || len(c.Errors) > 0 {
			return
		}
		entry = &Entry{
			Status:      http.StatusOK,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		}
		if err := pc.store.Set(ctx, key, entry); err != nil {
			log.Printf("ERROR: Failed to store page %s: %v", key, err)
		}
	}
}
