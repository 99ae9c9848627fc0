package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"yatube/api/middleware"
	"yatube/services"

	"github.com/gin-gonic/gin"
)

// Profile - посты автора и шапка со статистикой подписок
func (h *Handlers) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := middleware.CurrentUser(c)
	page, err := h.posts.ListPosts(ctx, services.ByAuthor(c.Param("username")), viewer, services.ParsePage(c.Query("page")))
	if err != nil {
		h.fail(c, err)
		return
	}
	author := page.Author
	followers, following, err := h.follows.FollowStats(ctx, author.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	isFollowing, err := h.follows.IsFollowing(ctx, viewer, author.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "profile.html", gin.H{
		"page":         page,
		"author":       author,
		"posts_count":  page.TotalCount,
		"followers":    followers,
		"following":    following,
		"is_following": isFollowing,
	})
}

func (h *Handlers) ProfileEdit(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")
	caller := middleware.CurrentUser(c)

	author, err := h.users.GetByUsername(ctx, username)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !services.IsOwner(caller, author) {
		recordOutcome("edit_profile", services.OutcomeForbidden, nil)
		c.Redirect(http.StatusFound, "/"+author.Username+"/")
		return
	}

	form := ProfileForm{
		FirstName: author.FirstName,
		LastName:  author.LastName,
		Username:  author.Username,
		Email:     author.Email,
	}
	if c.Request.Method != http.MethodPost {
		h.render(c, http.StatusOK, "profile_edit.html", gin.H{"form": form})
		return
	}

	form = ProfileForm{}
	if err := c.ShouldBind(&form); err != nil {
		recordOutcome("edit_profile", services.OutcomeUnchanged, fieldErrors(err))
		h.render(c, http.StatusOK, "profile_edit.html", gin.H{"form": form, "errors": fieldErrors(err).Fields})
		return
	}
	updated, outcome, err := h.users.UpdateProfile(ctx, caller, username, services.ProfileInput{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Username:  form.Username,
		Email:     form.Email,
	})
	recordOutcome("edit_profile", outcome, err)
	if errs, ok := formErrors(err); ok {
		h.render(c, http.StatusOK, "profile_edit.html", gin.H{"form": form, "errors": errs})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/"+updated.Username+"/")
}

func (h *Handlers) Signup(c *gin.Context) {
	var form SignupForm
	if c.Request.Method != http.MethodPost {
		h.render(c, http.StatusOK, "signup.html", gin.H{"form": form})
		return
	}
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusOK, "signup.html", gin.H{"form": form, "errors": fieldErrors(err).Fields})
		return
	}
	_, err := h.users.Register(c.Request.Context(), services.SignupInput{
		Username:        form.Username,
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		Email:           form.Email,
		Password:        form.Password1,
		PasswordConfirm: form.Password2,
	})
	if errs, ok := formErrors(err); ok {
		h.render(c, http.StatusOK, "signup.html", gin.H{"form": form, "errors": errs})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

func (h *Handlers) Login(c *gin.Context) {
	var form LoginForm
	if c.Request.Method != http.MethodPost {
		form.Next = c.Query("next")
		h.render(c, http.StatusOK, "login.html", gin.H{"form": form, "next": form.Next})
		return
	}
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusOK, "login.html", gin.H{"form": form, "next": form.Next, "errors": fieldErrors(err).Fields})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), strings.TrimSpace(form.Username), form.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		h.render(c, http.StatusOK, "login.html", gin.H{
			"form":   form,
			"next":   form.Next,
			"errors": map[string]string{"__all__": "Please enter a correct username and password."},
		})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := middleware.Login(c, h.sessions, user); err != nil {
		h.fail(c, err)
		return
	}
	log.Printf("DEBUG: User %s logged in", user.Username)
	c.Redirect(http.StatusFound, safeRedirect(form.Next, c.Request.Host))
}

func (h *Handlers) Logout(c *gin.Context) {
	if err := middleware.Logout(c, h.sessions); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}
