package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"yatube/db"
	"yatube/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FilterKind - какие посты попадают в ленту
type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterGroup
	FilterAuthor
	FilterFollowing
)

type PostFilter struct {
	Kind      FilterKind
	GroupSlug string
	Username  string
	Follower  *models.User
}

func AllPosts() PostFilter {
	return PostFilter{Kind: FilterAll}
}

func ByGroup(slug string) PostFilter {
	return PostFilter{Kind: FilterGroup, GroupSlug: slug}
}

func ByAuthor(username string) PostFilter {
	return PostFilter{Kind: FilterAuthor, Username: username}
}

func ByFollowing(user *models.User) PostFilter {
	return PostFilter{Kind: FilterFollowing, Follower: user}
}

// PostInput - поля формы поста, которые может задать пользователь.
// Автор и дата публикации сюда не входят.
type PostInput struct {
	Text       string
	GroupID    *int64
	Image      string
	ClearImage bool
}

type PostService struct {
	notifier *FeedNotifier
}

func NewPostService(notifier *FeedNotifier) *PostService {
	return &PostService{notifier: notifier}
}

func viewerID(viewer *models.User) int64 {
	if viewer == nil {
		return 0
	}
	return viewer.ID
}

// annotatedPosts - выборка постов с признаком liked для зрителя и числом лайков.
// liked считается подзапросом EXISTS по паре (user, post) в том же запросе.
func annotatedPosts(ctx context.Context, viewer *models.User) *gorm.DB {
	return db.GetReadOnlyDB(ctx).
		Model(&models.Post{}).
		Select(`posts.*,
			EXISTS (SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked,
			(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count`, viewerID(viewer)).
		Preload("Author").
		Preload("Group")
}

func scopeByPostOwner(username string, postID int64) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.id = ? AND posts.author_id IN (SELECT id FROM users WHERE username = ?)", postID, username)
	}
}

// resolveFilter проверяет существование группы/автора и возвращает условие выборки
func (ps *PostService) resolveFilter(ctx context.Context, filter PostFilter) (func(*gorm.DB) *gorm.DB, *models.Group, *models.User, error) {
	switch filter.Kind {
	case FilterAll:
		return func(tx *gorm.DB) *gorm.DB { return tx }, nil, nil, nil
	case FilterGroup:
		var group models.Group
		err := db.GetReadOnlyDB(ctx).Where("slug = ?", filter.GroupSlug).First(&group).Error
		if err != nil {
			return nil, nil, nil, notFound(err, "group")
		}
		return func(tx *gorm.DB) *gorm.DB {
			return tx.Where("posts.group_id = ?", group.ID)
		}, &group, nil, nil
	case FilterAuthor:
		var author models.User
		err := db.GetReadOnlyDB(ctx).Where("username = ?", filter.Username).First(&author).Error
		if err != nil {
			return nil, nil, nil, notFound(err, "author")
		}
		return func(tx *gorm.DB) *gorm.DB {
			return tx.Where("posts.author_id = ?", author.ID)
		}, nil, &author, nil
	case FilterFollowing:
		if err := requireCaller(filter.Follower); err != nil {
			return nil, nil, nil, err
		}
		followerID := filter.Follower.ID
		return func(tx *gorm.DB) *gorm.DB {
			return tx.Where("posts.author_id IN (SELECT author_id FROM follows WHERE user_id = ?)", followerID)
		}, nil, nil, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown post filter %d", filter.Kind)
}

// ListPosts возвращает страницу постов по фильтру, новые сверху
func (ps *PostService) ListPosts(ctx context.Context, filter PostFilter, viewer *models.User, pageNumber int) (*Page, error) {
	scope, group, author, err := ps.resolveFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	var total int64
	err = db.GetReadOnlyDB(ctx).Model(&models.Post{}).Scopes(scope).Count(&total).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	page := NewPage(total, pageNumber, PageSize)
	page.Group = group
	page.Author = author
	page.Posts = []models.Post{}
	if total == 0 {
		return page, nil
	}

	err = annotatedPosts(ctx, viewer).
		Scopes(scope).
		Order("posts.pub_date DESC, posts.id DESC").
		Offset(page.Offset()).
		Limit(page.PerPage).
		Find(&page.Posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}
	return page, nil
}

// FollowingFeed - лента авторов, на которых подписан viewer
func (ps *PostService) FollowingFeed(ctx context.Context, viewer *models.User, pageNumber int) (*Page, error) {
	if err := requireCaller(viewer); err != nil {
		return nil, err
	}
	return ps.ListPosts(ctx, ByFollowing(viewer), viewer, pageNumber)
}

// GetPost ищет пост по id в пределах автора username
func (ps *PostService) GetPost(ctx context.Context, username string, postID int64, viewer *models.User) (*models.Post, error) {
	var post models.Post
	err := annotatedPosts(ctx, viewer).Scopes(scopeByPostOwner(username, postID)).Take(&post).Error
	if err != nil {
		return nil, notFound(err, "post")
	}
	return &post, nil
}

func (ps *PostService) loadForUpdate(ctx context.Context, username string, postID int64) (*models.Post, error) {
	var post models.Post
	err := db.GetWriteDB(ctx).Model(&models.Post{}).Scopes(scopeByPostOwner(username, postID)).Take(&post).Error
	if err != nil {
		return nil, notFound(err, "post")
	}
	return &post, nil
}

func (ps *PostService) validate(ctx context.Context, input *PostInput) error {
	verr := &ValidationError{}
	input.Text = strings.TrimSpace(input.Text)
	if input.Text == "" {
		verr.Add("text", "This field is required.")
	}
	if input.GroupID != nil {
		var count int64
		err := db.GetReadOnlyDB(ctx).Model(&models.Group{}).Where("id = ?", *input.GroupID).Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check group: %w", err)
		}
		if count == 0 {
			verr.Add("group", "Select a valid choice. That choice is not one of the available choices.")
		}
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

// CreatePost создает пост от имени caller и оповещает подписчиков
func (ps *PostService) CreatePost(ctx context.Context, caller *models.User, input PostInput) (*models.Post, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := ps.validate(ctx, &input); err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     input.Text,
		AuthorID: caller.ID,
		GroupID:  input.GroupID,
		Image:    input.Image,
	}
	err := db.GetWriteDB(ctx).Omit(clause.Associations).Create(post).Error
	if err != nil {
		log.Printf("ERROR: Failed to create post in DB: %v", err)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	post.Author = *caller
	debugf("Post created in DB with ID=%d by %s", post.ID, caller.Username)

	if ps.notifier != nil {
		ps.notifier.PostCreated(ctx, *caller, *post)
	}
	return post, nil
}

// EditPost меняет текст, группу и картинку. Не автору возвращается OutcomeForbidden
// и пост без изменений.
func (ps *PostService) EditPost(ctx context.Context, caller *models.User, username string, postID int64, input PostInput) (*models.Post, Outcome, error) {
	if err := requireCaller(caller); err != nil {
		return nil, OutcomeUnchanged, err
	}
	post, err := ps.loadForUpdate(ctx, username, postID)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}
	if !IsOwner(caller, post) {
		return post, OutcomeForbidden, nil
	}
	if err = ps.validate(ctx, &input); err != nil {
		return post, OutcomeUnchanged, err
	}

	updates := map[string]interface{}{
		"text":     input.Text,
		"group_id": input.GroupID,
	}
	switch {
	case input.Image != "":
		updates["image"] = input.Image
	case input.ClearImage:
		updates["image"] = ""
	}
	err = db.GetWriteDB(ctx).Model(post).Updates(updates).Error
	if err != nil {
		return nil, OutcomeUnchanged, fmt.Errorf("failed to update post: %w", err)
	}

	post.Text = input.Text
	post.GroupID = input.GroupID
	if image, ok := updates["image"].(string); ok {
		post.Image = image
	}
	return post, OutcomeApplied, nil
}

// DeletePost удаляет пост вместе с комментариями и лайками
func (ps *PostService) DeletePost(ctx context.Context, caller *models.User, username string, postID int64) (Outcome, error) {
	if err := requireCaller(caller); err != nil {
		return OutcomeUnchanged, err
	}
	post, err := ps.loadForUpdate(ctx, username, postID)
	if err != nil {
		return OutcomeUnchanged, err
	}
	if !IsOwner(caller, post) {
		return OutcomeForbidden, nil
	}

	err = db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Post{}, post.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return OutcomeUnchanged, notFound(err, "post")
	}
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to delete post: %w", err)
	}
	return OutcomeApplied, nil
}

// CountPosts - число постов автора для шапки профиля
func (ps *PostService) CountPosts(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}
