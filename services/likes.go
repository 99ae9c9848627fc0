package services

import (
	"context"
	"fmt"
	"yatube/db"
	"yatube/models"

	"gorm.io/gorm/clause"
)

type LikeService struct{}

func NewLikeService() *LikeService {
	return &LikeService{}
}

func (ls *LikeService) post(ctx context.Context, username string, postID int64) (*models.Post, error) {
	var post models.Post
	err := db.GetReadOnlyDB(ctx).Model(&models.Post{}).
		Select("posts.id").
		Scopes(scopeByPostOwner(username, postID)).
		Take(&post).Error
	if err != nil {
		return nil, notFound(err, "post")
	}
	return &post, nil
}

// Like ставит лайк; повторный лайк ничего не меняет (get-or-create)
func (ls *LikeService) Like(ctx context.Context, caller *models.User, username string, postID int64) (Outcome, error) {
	if err := requireCaller(caller); err != nil {
		return OutcomeUnchanged, err
	}
	post, err := ls.post(ctx, username, postID)
	if err != nil {
		return OutcomeUnchanged, err
	}

	result := db.GetWriteDB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: caller.ID, PostID: post.ID})
	if db.IsDuplicateKey(result.Error) {
		return OutcomeUnchanged, nil
	}
	if result.Error != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to create like: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return OutcomeUnchanged, nil
	}
	return OutcomeApplied, nil
}

// Unlike снимает лайк, если он был
func (ls *LikeService) Unlike(ctx context.Context, caller *models.User, username string, postID int64) (Outcome, error) {
	if err := requireCaller(caller); err != nil {
		return OutcomeUnchanged, err
	}
	post, err := ls.post(ctx, username, postID)
	if err != nil {
		return OutcomeUnchanged, err
	}

	result := db.GetWriteDB(ctx).
		Where("user_id = ? AND post_id = ?", caller.ID, post.ID).
		Delete(&models.Like{})
	if result.Error != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to delete like: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return OutcomeUnchanged, nil
	}
	return OutcomeApplied, nil
}
