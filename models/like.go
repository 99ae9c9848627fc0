package models

// Like - отметка "нравится", пара (user_id, post_id) уникальна
type Like struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;uniqueIndex:unique_likes" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID int64 `gorm:"not null;uniqueIndex:unique_likes;index" json:"post_id"`
	Post   *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Like) TableName() string {
	return "likes"
}
