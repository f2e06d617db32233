package persistent

import (
	"time"

	"mediashare/services/video/internal/entity"
	"mediashare/services/video/internal/model"
)

func ToVideoEntity(m *model.VideoModel) *entity.Video {
	if m == nil {
		return nil
	}

	return &entity.Video{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		Title:        m.Title,
		Description:  m.Description,
		VideoURL:     m.VideoURL,
		ThumbnailURL: m.ThumbnailURL,
		Duration:     m.Duration,
		IsPublished:  m.IsPublished,
		Version:      m.Version,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func ToVideoModel(e *entity.Video) *model.VideoModel {
	if e == nil {
		return nil
	}

	return &model.VideoModel{
		ID:           e.ID,
		OwnerID:      e.OwnerID,
		Title:        e.Title,
		Description:  e.Description,
		VideoURL:     e.VideoURL,
		ThumbnailURL: e.ThumbnailURL,
		Duration:     e.Duration,
		IsPublished:  e.IsPublished,
		Version:      e.Version,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// videoListRow is one row of the videos ⋈ users listing query.
type videoListRow struct {
	ID            string
	Title         string
	Description   string
	ThumbnailURL  string
	Duration      float64
	IsPublished   bool
	CreatedAt     time.Time
	OwnerUsername string
	OwnerFullName string
	OwnerAvatar   string
}

func toVideoView(r videoListRow) entity.VideoView {
	return entity.VideoView{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		ThumbnailURL: r.ThumbnailURL,
		Duration:     r.Duration,
		IsPublished:  r.IsPublished,
		CreatedAt:    r.CreatedAt,
		Owner: entity.Owner{
			Username: r.OwnerUsername,
			FullName: r.OwnerFullName,
			Avatar:   r.OwnerAvatar,
		},
	}
}
