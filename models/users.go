package models

import (
	"time"
)

type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username   string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName  string    `gorm:"size:150" json:"first_name"`
	LastName   string    `gorm:"size:150" json:"last_name"`
	Email      string    `gorm:"size:254" json:"email"`
	Password   string    `gorm:"size:255" json:"-"`
	DateJoined time.Time `gorm:"autoCreateTime" json:"date_joined"`
}

func (User) TableName() string {
	return "users"
}

func (u User) OwnerID() int64 {
	return u.ID
}

// FullName возвращает имя для шапки профиля, при пустых именах - username
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}
