package services

import (
	"context"
	"fmt"
	"strings"
	"yatube/db"
	"yatube/models"

	"gorm.io/gorm/clause"
)

type CommentService struct{}

func NewCommentService() *CommentService {
	return &CommentService{}
}

// ListComments - комментарии поста, новые сверху
func (cs *CommentService) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := db.GetReadOnlyDB(ctx).
		Where("post_id = ?", postID).
		Preload("Author").
		Order("created DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	return comments, nil
}

// AddComment добавляет комментарий от caller к существующему посту
func (cs *CommentService) AddComment(ctx context.Context, caller *models.User, postID int64, text string) (*models.Comment, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	var post models.Post
	if err := db.GetWriteDB(ctx).Select("id").First(&post, postID).Error; err != nil {
		return nil, notFound(err, "post")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("text", "This field is required.")
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: caller.ID,
		Text:     text,
	}
	if err := db.GetWriteDB(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.Author = *caller
	debugf("Comment %d added to post %d by %s", comment.ID, post.ID, caller.Username)
	return comment, nil
}

// DeleteComment удаляет комментарий, только если caller его автор.
// Для чужого комментария ничего не происходит.
func (cs *CommentService) DeleteComment(ctx context.Context, caller *models.User, commentID int64) (Outcome, error) {
	if err := requireCaller(caller); err != nil {
		return OutcomeUnchanged, err
	}

	var comment models.Comment
	if err := db.GetWriteDB(ctx).First(&comment, commentID).Error; err != nil {
		return OutcomeUnchanged, notFound(err, "comment")
	}
	if !IsOwner(caller, comment) {
		return OutcomeForbidden, nil
	}

	if err := db.GetWriteDB(ctx).Delete(&models.Comment{}, comment.ID).Error; err != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to delete comment: %w", err)
	}
	return OutcomeApplied, nil
}
