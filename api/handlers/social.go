package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"yatube/api/middleware"
	"yatube/services"

	"github.com/gin-gonic/gin"
)

// AddComment всегда возвращает на страницу поста; невалидный комментарий молча отбрасывается
func (h *Handlers) AddComment(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	postURL := fmt.Sprintf("/%s/%d/", c.Param("username"), id)
	if c.Request.Method != http.MethodPost {
		c.Redirect(http.StatusFound, postURL)
		return
	}

	var form CommentForm
	if err := c.ShouldBind(&form); err != nil {
		recordOutcome("add_comment", services.OutcomeUnchanged, fieldErrors(err))
		c.Redirect(http.StatusFound, postURL)
		return
	}
	_, err := h.comments.AddComment(c.Request.Context(), middleware.CurrentUser(c), id, form.Text)
	recordOutcome("add_comment", services.OutcomeApplied, err)
	if _, invalid := formErrors(err); err != nil && !invalid {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL)
}

func (h *Handlers) DeleteComment(c *gin.Context) {
	id, ok := postID(c)
	commentID, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if !ok || err != nil {
		h.NotFound(c)
		return
	}
	outcome, err := h.comments.DeleteComment(c.Request.Context(), middleware.CurrentUser(c), commentID)
	recordOutcome("delete_comment", outcome, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/%s/%d/", c.Param("username"), id))
}

func (h *Handlers) Follow(c *gin.Context) {
	username := c.Param("username")
	outcome, err := h.follows.Follow(c.Request.Context(), middleware.CurrentUser(c), username)
	recordOutcome("follow", outcome, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/"+username+"/")
}

func (h *Handlers) Unfollow(c *gin.Context) {
	username := c.Param("username")
	outcome, err := h.follows.Unfollow(c.Request.Context(), middleware.CurrentUser(c), username)
	recordOutcome("unfollow", outcome, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/"+username+"/")
}

func (h *Handlers) Like(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	outcome, err := h.likes.Like(c.Request.Context(), middleware.CurrentUser(c), c.Param("username"), id)
	recordOutcome("like", outcome, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, backURL(c))
}

func (h *Handlers) Unlike(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	outcome, err := h.likes.Unlike(c.Request.Context(), middleware.CurrentUser(c), c.Param("username"), id)
	recordOutcome("unlike", outcome, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, backURL(c))
}

// backURL - страница, с которой пришел запрос (Referer), только в пределах сайта
func backURL(c *gin.Context) string {
	return safeRedirect(c.Request.Referer(), c.Request.Host)
}

// safeRedirect оставляет только относительные адреса и адреса этого же хоста
func safeRedirect(target, host string) string {
	if target == "" {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil {
		return "/"
	}
	if u.Host != "" && u.Host != host {
		return "/"
	}
	if u.Host == "" && (u.Scheme != "" || len(u.Path) == 0 || u.Path[0] != '/' || (len(u.Path) > 1 && u.Path[1] == '/')) {
		return "/"
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}
