package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"yatube/db"
	"yatube/models"

	"golang.org/x/crypto/argon2"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]{1,150}$`)

// reservedUsernames совпадают с префиксами маршрутов и не могут быть профилями
var reservedUsernames = map[string]bool{
	"new":     true,
	"follow":  true,
	"group":   true,
	"auth":    true,
	"ws":      true,
	"metrics": true,
	"media":   true,
}

type SignupInput struct {
	Username        string
	FirstName       string
	LastName        string
	Email           string
	Password        string
	PasswordConfirm string
}

type ProfileInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
}

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

func checkPassword(stored, password string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return subtle.ConstantTimeCompare(hash, expected) == 1
}

func checkUsername(verr *ValidationError, username string) {
	switch {
	case username == "":
		verr.Add("username", "This field is required.")
	case !usernamePattern.MatchString(username):
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	case reservedUsernames[strings.ToLower(username)]:
		verr.Add("username", "This username is reserved.")
	}
}

// Register создает пользователя; пароль хранится как salt$argon2id
func (us *UserService) Register(ctx context.Context, input SignupInput) (*models.User, error) {
	verr := &ValidationError{}
	input.Username = strings.TrimSpace(input.Username)
	checkUsername(verr, input.Username)
	if len(input.Password) < 8 {
		verr.Add("password1", "This password is too short. It must contain at least 8 characters.")
	}
	if input.Password != input.PasswordConfirm {
		verr.Add("password2", "The two password fields didn't match.")
	}
	if !verr.Empty() {
		return nil, verr
	}

	var alreadyExists int64
	err := db.GetWriteDB(ctx).Model(&models.User{}).Where("username = ?", input.Username).Count(&alreadyExists).Error
	if err != nil {
		return nil, fmt.Errorf("error checking if user exists: %w", err)
	}
	if alreadyExists > 0 {
		return nil, NewValidationError("username", "A user with that username already exists.")
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Username:  input.Username,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.TrimSpace(input.Email),
		Password:  passwordHash,
	}
	err = db.GetWriteDB(ctx).Create(user).Error
	if db.IsDuplicateKey(err) {
		return nil, NewValidationError("username", "A user with that username already exists.")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	debugf("User %s registered with ID=%d", user.Username, user.ID)
	return user, nil
}

// Authenticate проверяет пару логин/пароль
func (us *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !checkPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (us *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := db.GetReadOnlyDB(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (us *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := db.GetReadOnlyDB(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// UpdateProfile меняет имя, username и email. Чужой профиль не меняется.
// Пустой Username оставляет текущий.
func (us *UserService) UpdateProfile(ctx context.Context, caller *models.User, username string, input ProfileInput) (*models.User, Outcome, error) {
	if err := requireCaller(caller); err != nil {
		return nil, OutcomeUnchanged, err
	}
	user, err := us.GetByUsername(ctx, username)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}
	if !IsOwner(caller, user) {
		return user, OutcomeForbidden, nil
	}

	verr := &ValidationError{}
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		input.Username = user.Username
	}
	if input.Username != user.Username {
		checkUsername(verr, input.Username)
	}
	input.Email = strings.TrimSpace(input.Email)
	if input.Email != "" && !strings.Contains(input.Email, "@") {
		verr.Add("email", "Enter a valid email address.")
	}
	if !verr.Empty() {
		return user, OutcomeUnchanged, verr
	}

	updates := map[string]interface{}{
		"first_name": strings.TrimSpace(input.FirstName),
		"last_name":  strings.TrimSpace(input.LastName),
		"username":   input.Username,
		"email":      input.Email,
	}
	err = db.GetWriteDB(ctx).Model(user).Updates(updates).Error
	if db.IsDuplicateKey(err) {
		return user, OutcomeUnchanged, NewValidationError("username", "A user with that username already exists.")
	}
	if err != nil {
		return nil, OutcomeUnchanged, fmt.Errorf("failed to update profile: %w", err)
	}
	user.FirstName = updates["first_name"].(string)
	user.LastName = updates["last_name"].(string)
	user.Username = input.Username
	user.Email = input.Email
	return user, OutcomeApplied, nil
}

// DeleteUser удаляет пользователя вместе с его постами, комментариями, лайками и подписками
func (us *UserService) DeleteUser(ctx context.Context, caller *models.User, username string) (Outcome, error) {
	if err := requireCaller(caller); err != nil {
		return OutcomeUnchanged, err
	}
	user, err := us.GetByUsername(ctx, username)
	if err != nil {
		return OutcomeUnchanged, err
	}
	if !IsOwner(caller, user) {
		return OutcomeForbidden, nil
	}

	postsOfUser := "post_id IN (SELECT id FROM posts WHERE author_id = ?)"
	err = db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			model interface{}
			query string
			args  []interface{}
		}{
			{&models.Like{}, "user_id = ? OR " + postsOfUser, []interface{}{user.ID, user.ID}},
			{&models.Comment{}, "author_id = ? OR " + postsOfUser, []interface{}{user.ID, user.ID}},
			{&models.Follow{}, "user_id = ? OR author_id = ?", []interface{}{user.ID, user.ID}},
			{&models.Post{}, "author_id = ?", []interface{}{user.ID}},
		}
		for _, step := range steps {
			if err := tx.Where(step.query, step.args...).Delete(step.model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.User{}, user.ID).Error
	})
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to delete user: %w", err)
	}
	return OutcomeApplied, nil
}
