package db

import (
	"fmt"
	"yatube/models"

	"gorm.io/gorm"
)

// Migrate создает таблицы моделей и индексы для лент
func Migrate(database *gorm.DB) error {
	err := database.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.Like{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}
	return CreateFeedIndexes(database)
}

// CreateFeedIndexes создает составные индексы под выборки лент:
// посты автора/группы по дате и комментарии поста по дате
func CreateFeedIndexes(database *gorm.DB) error {
	indexes := map[string]string{
		"idx_posts_author_id_pub_date":  "posts (author_id, pub_date DESC)",
		"idx_posts_group_id_pub_date":   "posts (group_id, pub_date DESC)",
		"idx_comments_post_id_created":  "comments (post_id, created DESC)",
		"idx_follows_author_id_user_id": "follows (author_id, user_id)",
	}
	for name, target := range indexes {
		createIndexSQL := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s;`, name, target)
		if err := database.Exec(createIndexSQL).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", name, err)
		}
	}
	return nil
}
