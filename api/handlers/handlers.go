package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"yatube/api/middleware"
	"yatube/media"
	"yatube/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// Deps - сервисы, которые нужны обработчикам
type Deps struct {
	Posts    *services.PostService
	Comments *services.CommentService
	Follows  *services.FollowService
	Likes    *services.LikeService
	Groups   *services.GroupService
	Users    *services.UserService
	Images   *media.Images
	Sessions sessions.Store
	Hub      *services.WSConnManager
}

// Handlers содержит обработчики страниц
type Handlers struct {
	posts    *services.PostService
	comments *services.CommentService
	follows  *services.FollowService
	likes    *services.LikeService
	groups   *services.GroupService
	users    *services.UserService
	images   *media.Images
	sessions sessions.Store
	hub      *services.WSConnManager
}

func New(deps Deps) *Handlers {
	return &Handlers{
		posts:    deps.Posts,
		comments: deps.Comments,
		follows:  deps.Follows,
		likes:    deps.Likes,
		groups:   deps.Groups,
		users:    deps.Users,
		images:   deps.Images,
		sessions: deps.Sessions,
		hub:      deps.Hub,
	}
}

// render добавляет в данные шаблона текущего пользователя и пустые ошибки формы
func (h *Handlers) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user := middleware.CurrentUser(c); user != nil {
		data["user"] = user
	}
	if _, ok := data["errors"]; !ok {
		data["errors"] = map[string]string{}
	}
	c.HTML(status, name, data)
}

// NotFound - страница 404 с запрошенным путем
func (h *Handlers) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404.html", gin.H{"path": c.Request.URL.Path})
}

// ServerError - страница 500
func (h *Handlers) ServerError(c *gin.Context) {
	h.render(c, http.StatusInternalServerError, "500.html", nil)
}

// Recovery отдает 500.html вместо пустого ответа при панике
func (h *Handlers) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("ERROR: panic while serving %s: %v", c.Request.URL.Path, recovered)
		h.ServerError(c)
		c.Abort()
	})
}

// fail переводит ошибку сервиса в ответ
func (h *Handlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		h.NotFound(c)
	case errors.Is(err, services.ErrAuthenticationRequired):
		c.Redirect(http.StatusFound, middleware.LoginURL(c.Request))
	default:
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		h.ServerError(c)
	}
}

// postID разбирает :post_id; нечисловой id - это 404
func postID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	return id, err == nil
}

func formErrors(err error) (map[string]string, bool) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}

// recordOutcome пишет метрику мутации по результату
func recordOutcome(operation string, outcome services.Outcome, err error) {
	switch {
	case err == nil:
		middleware.RecordMutation(operation, outcome.String())
	case errors.As(err, new(*services.ValidationError)):
		middleware.RecordMutation(operation, "invalid")
	default:
		middleware.RecordMutation(operation, "error")
	}
}
