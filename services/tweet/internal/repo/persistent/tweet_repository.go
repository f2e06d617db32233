package persistent

import (
	"context"
	"errors"
	"strings"
	"time"

	"mediashare/pkg/apperror"
	"mediashare/pkg/listing"
	"mediashare/pkg/models"
	"mediashare/services/tweet/internal/entity"
	"mediashare/services/tweet/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TweetRepository interface {
	Create(ctx context.Context, tweet *entity.Tweet) error
	GetByID(ctx context.Context, id string) (*entity.Tweet, error)
	List(ctx context.Context, q listing.Query) (*listing.Page[entity.TweetView], error)
	UpdateContent(ctx context.Context, id string, version int64, content string) (*entity.Tweet, error)
	Delete(ctx context.Context, id string) error
	UserExists(ctx context.Context, userID string) (bool, error)
}

var tweetSortColumns = map[string]string{
	"content":   "content",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

const tweetListColumns = "tweets.id, tweets.content, tweets.created_at, tweets.updated_at, " +
	"users.username AS owner_username, users.full_name AS owner_full_name, users.avatar AS owner_avatar"

type tweetRepository struct {
	db *gorm.DB
}

func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

func (r *tweetRepository) Create(ctx context.Context, tweet *entity.Tweet) error {
	tweetModel := ToTweetModel(tweet)
	if err := r.db.WithContext(ctx).Create(tweetModel).Error; err != nil {
		return err
	}
	*tweet = *ToTweetEntity(tweetModel)
	return nil
}

func (r *tweetRepository) GetByID(ctx context.Context, id string) (*entity.Tweet, error) {
	var tweetModel model.TweetModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tweetModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrRecordNotFound
		}
		return nil, err
	}
	return ToTweetEntity(&tweetModel), nil
}

func (r *tweetRepository) List(ctx context.Context, q listing.Query) (*listing.Page[entity.TweetView], error) {
	base := r.db.WithContext(ctx).
		Table("tweets").
		Joins("INNER JOIN users ON users.id = tweets.owner_id AND users.deleted_at IS NULL")
	if q.Filter.OwnerID != "" {
		base = base.Where("tweets.owner_id = ?", q.Filter.OwnerID)
	}
	if q.Filter.HasTerm() {
		base = base.Where("tweets.content ILIKE ?", likePattern(q.Filter.Term))
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	query := base.Select(tweetListColumns)
	if column, ok := tweetSortColumns[q.Sort.Field]; ok {
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Table: "tweets", Name: column},
			Desc:   q.Sort.Desc,
		})
	}

	var rows []tweetListRow
	if err := query.
		Order("tweets.created_at ASC").
		Order("tweets.id ASC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]entity.TweetView, len(rows))
	for i := range rows {
		docs[i] = toTweetView(rows[i])
	}
	return listing.NewPage(docs, total, q), nil
}

func (r *tweetRepository) UpdateContent(ctx context.Context, id string, version int64, content string) (*entity.Tweet, error) {
	db := r.db.WithContext(ctx)
	result := db.Model(&model.TweetModel{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"content":    content,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&model.TweetModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, apperror.ErrRecordNotFound
		}
		return nil, apperror.ErrVersionConflict
	}

	return r.GetByID(ctx, id)
}

func (r *tweetRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&model.TweetModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.ErrRecordNotFound
	}
	return nil
}

func (r *tweetRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
