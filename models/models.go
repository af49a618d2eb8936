package models

import "github.com/jinzhu/gorm"

type User struct {
	gorm.Model
	Name     string
	Email    string `gorm:"unique"`
	Password string
}

type Link struct {
	gorm.Model
	Description string
	URL         string
	PostedByID  *uint
	PostedBy    *User  `gorm:"foreignkey:PostedByID"`
	Votes       []Vote `gorm:"foreignkey:LinkID"`
}

// Vote - один голос пользователя за ссылку
type Vote struct {
	gorm.Model
	LinkID uint `gorm:"unique_index:idx_vote_link_user"`
	UserID uint `gorm:"unique_index:idx_vote_link_user"`
	User   User `gorm:"foreignkey:UserID"`
}
