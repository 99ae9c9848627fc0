package services

import (
	"context"
	"fmt"
	"yatube/db"
	"yatube/models"
)

// FollowService - подписки на авторов. В отличие от дружбы подтверждение не нужно.
type FollowService struct{}

func NewFollowService() *FollowService {
	return &FollowService{}
}

func (fs *FollowService) author(ctx context.Context, username string) (*models.User, error) {
	var author models.User
	if err := db.GetReadOnlyDB(ctx).Where("username = ?", username).First(&author).Error; err != nil {
		return nil, notFound(err, "author")
	}
	return &author, nil
}

// Follow подписывает caller на автора. Повторная подписка и подписка на себя
// ничего не меняют.
func (fs *FollowService) Follow(ctx context.Context, caller *models.User, username string) (Outcome, error) {
	if err := requireCaller(caller); err != nil {
		return OutcomeUnchanged, err
	}
	author, err := fs.author(ctx, username)
	if err != nil {
		return OutcomeUnchanged, err
	}
	if author.ID == caller.ID {
		return OutcomeUnchanged, nil
	}

	var exists int64
	err = db.GetWriteDB(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", caller.ID, author.ID).
		Count(&exists).Error
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("error checking follow: %w", err)
	}
	if exists > 0 {
		return OutcomeUnchanged, nil
	}

	err = db.GetWriteDB(ctx).Create(&models.Follow{UserID: caller.ID, AuthorID: author.ID}).Error
	if db.IsDuplicateKey(err) {
		// параллельный запрос успел создать ту же подписку
		return OutcomeUnchanged, nil
	}
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to create follow: %w", err)
	}
	return OutcomeApplied, nil
}

// Unfollow удаляет подписку, если она есть
func (fs *FollowService) Unfollow(ctx context.Context, caller *models.User, username string) (Outcome, error) {
	if err := requireCaller(caller); err != nil {
		return OutcomeUnchanged, err
	}
	author, err := fs.author(ctx, username)
	if err != nil {
		return OutcomeUnchanged, err
	}

	result := db.GetWriteDB(ctx).
		Where("user_id = ? AND author_id = ?", caller.ID, author.ID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to delete follow: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return OutcomeUnchanged, nil
	}
	return OutcomeApplied, nil
}

// IsFollowing - подписан ли viewer на автора; аноним никогда не подписан
func (fs *FollowService) IsFollowing(ctx context.Context, viewer *models.User, authorID int64) (bool, error) {
	if viewer == nil || viewer.ID == 0 {
		return false, nil
	}
	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", viewer.ID, authorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("error checking follow: %w", err)
	}
	return count > 0, nil
}

// FollowStats - число подписчиков и подписок пользователя
func (fs *FollowService) FollowStats(ctx context.Context, userID int64) (followers int64, following int64, err error) {
	err = db.GetReadOnlyDB(ctx).Model(&models.Follow{}).Where("author_id = ?", userID).Count(&followers).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count followers: %w", err)
	}
	err = db.GetReadOnlyDB(ctx).Model(&models.Follow{}).Where("user_id = ?", userID).Count(&following).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count following: %w", err)
	}
	return followers, following, nil
}

// FollowerIDs - id подписчиков автора, для рассылки событий ленты
func (fs *FollowService) FollowerIDs(ctx context.Context, authorID int64) ([]int64, error) {
	var ids []int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Follow{}).
		Where("author_id = ?", authorID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return ids, nil
}
