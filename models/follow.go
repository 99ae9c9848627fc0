package models

// Follow - подписка UserID (подписчик) на AuthorID.
// Пара (user_id, author_id) уникальна на уровне БД.
type Follow struct {
	ID       int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   int64 `gorm:"not null;uniqueIndex:unique_follows" json:"user_id"`
	User     *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID int64 `gorm:"not null;uniqueIndex:unique_follows;index" json:"author_id"`
	Author   *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Follow) TableName() string {
	return "follows"
}
