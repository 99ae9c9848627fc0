package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"yatube/db"
	"yatube/models"

	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type GroupInput struct {
	Title       string
	Slug        string
	Description string
}

type GroupService struct{}

func NewGroupService() *GroupService {
	return &GroupService{}
}

func (gs *GroupService) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := db.GetReadOnlyDB(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, notFound(err, "group")
	}
	return &group, nil
}

// List - все группы по названию, для выбора в форме поста
func (gs *GroupService) List(ctx context.Context) ([]models.Group, error) {
	groups := []models.Group{}
	if err := db.GetReadOnlyDB(ctx).Order("title, id").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}
	return groups, nil
}

// CreateGroup создает группу; занятый slug - ошибка формы
func (gs *GroupService) CreateGroup(ctx context.Context, caller *models.User, input GroupInput) (*models.Group, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)
	input.Description = strings.TrimSpace(input.Description)
	switch {
	case input.Title == "":
		verr.Add("title", "This field is required.")
	case len([]rune(input.Title)) > 200:
		verr.Add("title", "Ensure this value has at most 200 characters.")
	}
	switch {
	case input.Slug == "":
		verr.Add("slug", "This field is required.")
	case len(input.Slug) > 50 || !slugPattern.MatchString(input.Slug):
		verr.Add("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}
	switch {
	case input.Description == "":
		verr.Add("description", "This field is required.")
	case len([]rune(input.Description)) > 200:
		verr.Add("description", "Ensure this value has at most 200 characters.")
	}
	if !verr.Empty() {
		return nil, verr
	}

	group := &models.Group{Title: input.Title, Slug: input.Slug, Description: input.Description}
	err := db.GetWriteDB(ctx).Create(group).Error
	if db.IsDuplicateKey(err) {
		return nil, NewValidationError("slug", "Group with this Slug already exists.")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	debugf("Group %s created by %s", group.Slug, caller.Username)
	return group, nil
}

// DeleteGroup удаляет группу; посты группы остаются без группы
func (gs *GroupService) DeleteGroup(ctx context.Context, slug string) error {
	group, err := gs.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	err = db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Post{}).Where("group_id = ?", group.ID).Update("group_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, group.ID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}
