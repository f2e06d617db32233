package persistent

import (
	"time"

	"mediashare/services/tweet/internal/entity"
	"mediashare/services/tweet/internal/model"
)

func ToTweetEntity(m *model.TweetModel) *entity.Tweet {
	if m == nil {
		return nil
	}

	return &entity.Tweet{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Content:   m.Content,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToTweetModel(e *entity.Tweet) *model.TweetModel {
	if e == nil {
		return nil
	}

	return &model.TweetModel{
		ID:        e.ID,
		OwnerID:   e.OwnerID,
		Content:   e.Content,
		Version:   e.Version,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

type tweetListRow struct {
	ID            string
	Content       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	OwnerUsername string
	OwnerFullName string
	OwnerAvatar   string
}

func toTweetView(r tweetListRow) entity.TweetView {
	return entity.TweetView{
		ID:        r.ID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Owner: entity.Owner{
			Username: r.OwnerUsername,
			FullName: r.OwnerFullName,
			Avatar:   r.OwnerAvatar,
		},
	}
}
