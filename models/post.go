package models

import "time"

// Post - запись пользователя. PubDate выставляется один раз при создании.
// Liked и LikesCount не хранятся в таблице, их заполняет запрос ленты.
type Post struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
	AuthorID int64     `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID  *int64    `gorm:"index" json:"group_id,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	Image    string    `gorm:"size:255" json:"image,omitempty"`

	Liked      bool  `gorm:"->;-:migration" json:"liked"`
	LikesCount int64 `gorm:"->;-:migration" json:"likes_count"`
}

func (Post) TableName() string {
	return "posts"
}

func (p Post) OwnerID() int64 {
	return p.AuthorID
}

// Excerpt - первые 15 символов текста для заголовков и логов
func (p Post) Excerpt() string {
	runes := []rune(p.Text)
	if len(runes) <= 15 {
		return p.Text
	}
	return string(runes[:15])
}
