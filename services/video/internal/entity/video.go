package entity

import "time"

type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoFile"`
	ThumbnailURL string    `json:"thumbnail"`
	Duration     float64   `json:"duration"`
	IsPublished  bool      `json:"isPublished"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (v *Video) GetOwnerID() string {
	return v.OwnerID
}

// Owner is the public profile of the user a video belongs to.
type Owner struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// VideoView is the public projection returned by listings.
type VideoView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnail"`
	Duration     float64   `json:"duration"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	Owner        Owner     `json:"owner"`
}

// VideoPatch lists the fields an update may change; nil fields are kept.
type VideoPatch struct {
	Title        *string
	Description  *string
	ThumbnailURL *string
	IsPublished  *bool
}

// Apply copies the set fields of p onto v.
func (p VideoPatch) Apply(v *Video) {
	if p.Title != nil {
		v.Title = *p.Title
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if p.ThumbnailURL != nil {
		v.ThumbnailURL = *p.ThumbnailURL
	}
	if p.IsPublished != nil {
		v.IsPublished = *p.IsPublished
	}
}
