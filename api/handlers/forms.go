package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"yatube/services"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type PostForm struct {
	Text       string `form:"text"`
	Group      string `form:"group"`
	ImageClear string `form:"image-clear"`
}

type CommentForm struct {
	Text string `form:"text"`
}

type GroupForm struct {
	Title       string `form:"title" binding:"required,max=200"`
	Slug        string `form:"slug" binding:"required,max=50,slug"`
	Description string `form:"description" binding:"required,max=200"`
}

type ProfileForm struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Username  string `form:"username" binding:"max=150"`
	Email     string `form:"email" binding:"omitempty,email"`
}

type SignupForm struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Username  string `form:"username" binding:"required,max=150"`
	Email     string `form:"email" binding:"omitempty,email"`
	Password1 string `form:"password1" binding:"required"`
	Password2 string `form:"password2" binding:"required"`
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

var (
	slugRe       = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	registerOnce sync.Once
)

// RegisterValidators добавляет в валидатор gin правило slug и имена полей из тега form
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugRe.MatchString(fl.Field().String())
		})
	})
}

// fieldErrors переводит ошибки привязки формы в сообщения по полям
func fieldErrors(err error) *services.ValidationError {
	verr := &services.ValidationError{}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		verr.Add("__all__", "Invalid form submission.")
		return verr
	}
	for _, fe := range validationErrors {
		var message string
		switch fe.Tag() {
		case "required":
			message = "This field is required."
		case "max":
			message = fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
		case "email":
			message = "Enter a valid email address."
		case "slug":
			message = "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
		default:
			message = "Enter a valid value."
		}
		verr.Add(fe.Field(), message)
	}
	return verr
}
