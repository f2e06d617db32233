package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VideoModel struct {
	ID           string    `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID      string    `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	VideoURL     string    `gorm:"type:varchar(500);not null" json:"video_url"`
	ThumbnailURL string    `gorm:"type:varchar(500);not null" json:"thumbnail_url"`
	Duration     float64   `gorm:"not null;default:0" json:"duration"`
	IsPublished  bool      `gorm:"not null;default:false" json:"is_published"`
	Version      int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (VideoModel) TableName() string {
	return "videos"
}

func (v *VideoModel) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.Version == 0 {
		v.Version = 1
	}
	return nil
}
