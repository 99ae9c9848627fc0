package models

// Group - тематическое сообщество, к которому может относиться пост
type Group struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"size:200" json:"description"`
}

func (Group) TableName() string {
	return "post_groups"
}
