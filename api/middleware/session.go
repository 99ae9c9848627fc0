package middleware

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"yatube/config"
	"yatube/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	SessionName    = "auth-session"
	LoginPath      = "/auth/login/"
	userIDKey      = "user_id"
	currentUserKey = "current_user"
)

// UserLoader загружает пользователя сессии
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

func NewCookieStore(conf *config.ConfigSchema) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(conf.Session.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   conf.Session.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   conf.Session.MaxAge,
	}
	return store
}

// SessionAuth кладет в контекст пользователя из cookie-сессии, если он есть.
// Битая сессия или удаленный пользователь означают анонима.
func SessionAuth(store sessions.Store, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Get(c.Request, SessionName)
		if err != nil {
			log.Printf("DEBUG: Ignoring invalid session: %v", err)
			c.Next()
			return
		}
		userID, ok := session.Values[userIDKey].(int64)
		if !ok || userID == 0 {
			c.Next()
			return
		}
		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.Next()
			return
		}
		c.Set(userIDKey, user.ID)
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser - пользователь запроса или nil для анонима
func CurrentUser(c *gin.Context) *models.User {
	if value, ok := c.Get(currentUserKey); ok {
		if user, ok := value.(*models.User); ok {
			return user
		}
	}
	return nil
}

// ViewerID - id пользователя запроса, 0 для анонима
func ViewerID(c *gin.Context) int64 {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// LoginURL - адрес входа с возвратом на запрошенную страницу.
// next экранируется целиком, кроме "/": "+" и "&" в пути иначе портятся при разборе.
func LoginURL(r *http.Request) string {
	next := strings.ReplaceAll(url.QueryEscape(r.URL.RequestURI()), "%2F", "/")
	return LoginPath + "?next=" + next
}

// LoginRequired отправляет анонима на страницу входа
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginURL(c.Request))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Login сохраняет пользователя в сессии
func Login(c *gin.Context, store sessions.Store, user *models.User) error {
	session, _ := store.Get(c.Request, SessionName)
	session.Values[userIDKey] = user.ID
	return sessions.Save(c.Request, c.Writer)
}

// Logout удаляет cookie сессии
func Logout(c *gin.Context, store sessions.Store) error {
	session, _ := store.Get(c.Request, SessionName)
	delete(session.Values, userIDKey)
	session.Options.MaxAge = -1
	return sessions.Save(c.Request, c.Writer)
}
