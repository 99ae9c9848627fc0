package models

import "time"

type Comment struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID   int64     `gorm:"not null;index" json:"post_id"`
	Post     *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID int64     `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Created  time.Time `gorm:"autoCreateTime;index" json:"created"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c Comment) OwnerID() int64 {
	return c.AuthorID
}
