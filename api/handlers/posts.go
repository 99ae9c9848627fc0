package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"yatube/api/middleware"
	"yatube/media"
	"yatube/models"
	"yatube/services"

	"github.com/gin-gonic/gin"
)

// Index - главная лента, закрывается кэшем страниц в роутере
func (h *Handlers) Index(c *gin.Context) {
	page, err := h.posts.ListPosts(c.Request.Context(), services.AllPosts(), middleware.CurrentUser(c), services.ParsePage(c.Query("page")))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "index.html", gin.H{"page": page})
}

func (h *Handlers) GroupPosts(c *gin.Context) {
	page, err := h.posts.ListPosts(c.Request.Context(), services.ByGroup(c.Param("slug")), middleware.CurrentUser(c), services.ParsePage(c.Query("page")))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "group.html", gin.H{"page": page, "group": page.Group})
}

// FollowIndex - посты авторов, на которых подписан пользователь
func (h *Handlers) FollowIndex(c *gin.Context) {
	page, err := h.posts.FollowingFeed(c.Request.Context(), middleware.CurrentUser(c), services.ParsePage(c.Query("page")))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "follow.html", gin.H{"page": page})
}

func (h *Handlers) PostView(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	ctx := c.Request.Context()
	post, err := h.posts.GetPost(ctx, c.Param("username"), id, middleware.CurrentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	comments, err := h.comments.ListComments(ctx, post.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "post.html", gin.H{
		"post":     post,
		"author":   post.Author,
		"comments": comments,
	})
}

// postInput собирает ввод формы поста; картинка сохраняется в хранилище сразу
func (h *Handlers) postInput(c *gin.Context, form PostForm) (services.PostInput, error) {
	input := services.PostInput{
		Text:       form.Text,
		ClearImage: form.ImageClear != "",
	}
	if group := strings.TrimSpace(form.Group); group != "" {
		id, err := strconv.ParseInt(group, 10, 64)
		if err != nil {
			return input, services.NewValidationError("group", "Select a valid choice. That choice is not one of the available choices.")
		}
		input.GroupID = &id
	}

	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return input, nil
	}
	if err != nil {
		return input, services.NewValidationError("image", "Upload a valid image.")
	}
	reader, err := file.Open()
	if err != nil {
		return input, fmt.Errorf("failed to open upload: %w", err)
	}
	defer reader.Close()

	key, err := h.images.Save(c.Request.Context(), reader)
	switch {
	case errors.Is(err, media.ErrNoBackend), errors.Is(err, media.ErrNotImage), errors.Is(err, media.ErrTooLarge):
		return input, services.NewValidationError("image", err.Error())
	case err != nil:
		return input, err
	}
	input.Image = key
	return input, nil
}

func (h *Handlers) renderPostForm(c *gin.Context, status int, form PostForm, post *models.Post, errs map[string]string) {
	groups, err := h.groups.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, status, "post_form.html", gin.H{
		"form":    form,
		"groups":  groups,
		"post":    post,
		"is_edit": post != nil,
		"errors":  errs,
	})
}

func (h *Handlers) NewPost(c *gin.Context) {
	var form PostForm
	if c.Request.Method != http.MethodPost {
		h.renderPostForm(c, http.StatusOK, form, nil, nil)
		return
	}
	if err := c.ShouldBind(&form); err != nil {
		verr := fieldErrors(err)
		recordOutcome("create_post", services.OutcomeUnchanged, verr)
		h.renderPostForm(c, http.StatusOK, form, nil, verr.Fields)
		return
	}

	input, err := h.postInput(c, form)
	if err == nil {
		_, err = h.posts.CreatePost(c.Request.Context(), middleware.CurrentUser(c), input)
		if err != nil {
			h.dropImage(c.Request.Context(), input.Image)
		}
	}
	recordOutcome("create_post", services.OutcomeApplied, err)
	if errs, ok := formErrors(err); ok {
		h.renderPostForm(c, http.StatusOK, form, nil, errs)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handlers) EditPost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	ctx := c.Request.Context()
	username := c.Param("username")
	caller := middleware.CurrentUser(c)
	postURL := fmt.Sprintf("/%s/%d/", username, id)

	post, err := h.posts.GetPost(ctx, username, id, caller)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !services.IsOwner(caller, post) {
		recordOutcome("edit_post", services.OutcomeForbidden, nil)
		c.Redirect(http.StatusFound, postURL)
		return
	}

	form := PostForm{Text: post.Text}
	if post.GroupID != nil {
		form.Group = strconv.FormatInt(*post.GroupID, 10)
	}
	if c.Request.Method != http.MethodPost {
		h.renderPostForm(c, http.StatusOK, form, post, nil)
		return
	}
	form = PostForm{}
	if err := c.ShouldBind(&form); err != nil {
		verr := fieldErrors(err)
		recordOutcome("edit_post", services.OutcomeUnchanged, verr)
		h.renderPostForm(c, http.StatusOK, form, post, verr.Fields)
		return
	}

	previousImage := post.Image
	input, err := h.postInput(c, form)
	outcome := services.OutcomeUnchanged
	if err == nil {
		_, outcome, err = h.posts.EditPost(ctx, caller, username, id, input)
		if err != nil || outcome != services.OutcomeApplied {
			h.dropImage(ctx, input.Image)
		}
	}
	recordOutcome("edit_post", outcome, err)
	if errs, ok := formErrors(err); ok {
		h.renderPostForm(c, http.StatusOK, form, post, errs)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	if outcome == services.OutcomeApplied && (input.Image != "" || input.ClearImage) {
		h.dropImage(ctx, previousImage)
	}
	c.Redirect(http.StatusFound, postURL)
}

func (h *Handlers) DeletePost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	ctx := c.Request.Context()
	username := c.Param("username")
	caller := middleware.CurrentUser(c)

	post, err := h.posts.GetPost(ctx, username, id, caller)
	if err != nil {
		h.fail(c, err)
		return
	}
	outcome, err := h.posts.DeletePost(ctx, caller, username, id)
	recordOutcome("delete_post", outcome, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	if outcome == services.OutcomeForbidden {
		c.Redirect(http.StatusFound, fmt.Sprintf("/%s/%d/", username, id))
		return
	}
	h.dropImage(ctx, post.Image)
	c.Redirect(http.StatusFound, "/"+username+"/")
}

// dropImage удаляет картинку, которая больше ни на что не ссылается
func (h *Handlers) dropImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.images.Remove(ctx, key); err != nil {
		log.Printf("ERROR: Failed to remove image %s: %v", key, err)
	}
}

// Media раздает картинки из хранилища, когда у него нет публичного адреса
func (h *Handlers) Media(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	reader, size, contentType, err := h.images.Open(c.Request.Context(), key)
	if errors.Is(err, media.ErrNotFound) {
		h.NotFound(c)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	defer reader.Close()
	c.DataFromReader(http.StatusOK, size, contentType, reader, nil)
}
