package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleViewer  UserRole = "viewer"
	RoleCreator UserRole = "creator"
)

// User is the account table owned by the auth service. Media services only
// read its public profile columns.
type User struct {
	ID        string         `gorm:"type:uuid;primary_key" json:"id"`
	Email     string         `gorm:"uniqueIndex;not null" json:"-"`
	Username  string         `gorm:"uniqueIndex;not null" json:"username"`
	FullName  string         `gorm:"type:varchar(255)" json:"fullName"`
	Avatar    string         `gorm:"type:varchar(500)" json:"avatar"`
	Password  string         `gorm:"not null" json:"-"`
	Role      UserRole       `gorm:"type:varchar(20);default:'viewer'" json:"-"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// Profile is the public projection of a user joined onto listed resources.
type Profile struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

func (u *User) Profile() Profile {
	return Profile{Username: u.Username, FullName: u.FullName, Avatar: u.Avatar}
}
