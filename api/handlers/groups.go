package handlers

import (
	"net/http"
	"yatube/api/middleware"
	"yatube/services"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) NewGroup(c *gin.Context) {
	var form GroupForm
	if c.Request.Method != http.MethodPost {
		h.render(c, http.StatusOK, "group_new.html", gin.H{"form": form})
		return
	}
	if err := c.ShouldBind(&form); err != nil {
		recordOutcome("create_group", services.OutcomeUnchanged, fieldErrors(err))
		h.render(c, http.StatusOK, "group_new.html", gin.H{"form": form, "errors": fieldErrors(err).Fields})
		return
	}
	_, err := h.groups.CreateGroup(c.Request.Context(), middleware.CurrentUser(c), services.GroupInput{
		Title:       form.Title,
		Slug:        form.Slug,
		Description: form.Description,
	})
	recordOutcome("create_group", services.OutcomeApplied, err)
	if errs, ok := formErrors(err); ok {
		h.render(c, http.StatusOK, "group_new.html", gin.H{"form": form, "errors": errs})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}
