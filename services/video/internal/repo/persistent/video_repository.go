package persistent

import (
	"context"
	"errors"
	"strings"
	"time"

	"mediashare/pkg/apperror"
	"mediashare/pkg/listing"
	"mediashare/services/video/internal/entity"
	"mediashare/services/video/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VideoRepository interface {
	Create(ctx context.Context, video *entity.Video) error
	GetByID(ctx context.Context, id string) (*entity.Video, error)
	List(ctx context.Context, q listing.Query) (*listing.Page[entity.VideoView], error)
	// Update applies patch only if the stored version still equals version,
	// and bumps it. A stale version yields apperror.ErrVersionConflict.
	Update(ctx context.Context, id string, version int64, patch entity.VideoPatch) (*entity.Video, error)
	Delete(ctx context.Context, id string) error
}

// Columns clients may search and sort on, keyed by their public names.
var (
	videoSearchColumns = map[string]string{
		"title":       "title",
		"description": "description",
	}
	videoSortColumns = map[string]string{
		"title":       "title",
		"description": "description",
		"duration":    "duration",
		"isPublished": "is_published",
		"createdAt":   "created_at",
		"updatedAt":   "updated_at",
	}
)

const videoListColumns = "videos.id, videos.title, videos.description, videos.thumbnail_url, " +
	"videos.duration, videos.is_published, videos.created_at, " +
	"users.username AS owner_username, users.full_name AS owner_full_name, users.avatar AS owner_avatar"

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, video *entity.Video) error {
	videoModel := ToVideoModel(video)
	if err := r.db.WithContext(ctx).Create(videoModel).Error; err != nil {
		return err
	}
	*video = *ToVideoEntity(videoModel)
	return nil
}

func (r *videoRepository) GetByID(ctx context.Context, id string) (*entity.Video, error) {
	var videoModel model.VideoModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&videoModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrRecordNotFound
		}
		return nil, err
	}
	return ToVideoEntity(&videoModel), nil
}

func (r *videoRepository) List(ctx context.Context, q listing.Query) (*listing.Page[entity.VideoView], error) {
	base := r.db.WithContext(ctx).
		Table("videos").
		Joins("INNER JOIN users ON users.id = videos.owner_id AND users.deleted_at IS NULL")
	base = applyVideoFilter(base, q.Filter).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []videoListRow
	query := base.Select(videoListColumns)
	if column, ok := videoSortColumns[q.Sort.Field]; ok {
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Table: "videos", Name: column},
			Desc:   q.Sort.Desc,
		})
	}
	if err := query.
		Order("videos.created_at ASC").
		Order("videos.id ASC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]entity.VideoView, len(rows))
	for i := range rows {
		docs[i] = toVideoView(rows[i])
	}
	return listing.NewPage(docs, total, q), nil
}

func (r *videoRepository) Update(ctx context.Context, id string, version int64, patch entity.VideoPatch) (*entity.Video, error) {
	updates := map[string]interface{}{
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now(),
	}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.ThumbnailURL != nil {
		updates["thumbnail_url"] = *patch.ThumbnailURL
	}
	if patch.IsPublished != nil {
		updates["is_published"] = *patch.IsPublished
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&model.VideoModel{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&model.VideoModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, apperror.ErrRecordNotFound
		}
		return nil, apperror.ErrVersionConflict
	}

	return r.GetByID(ctx, id)
}

func (r *videoRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&model.VideoModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.ErrRecordNotFound
	}
	return nil
}

func applyVideoFilter(tx *gorm.DB, f listing.Filter) *gorm.DB {
	if f.OwnerID != "" {
		tx = tx.Where("videos.owner_id = ?", f.OwnerID)
	}
	if !f.HasTerm() {
		return tx
	}

	pattern := likePattern(f.Term)
	var conds []string
	var args []interface{}
	for _, name := range f.SearchFields {
		column, ok := videoSearchColumns[name]
		if !ok {
			continue
		}
		conds = append(conds, "videos."+column+" ILIKE ?")
		args = append(args, pattern)
	}
	if len(conds) == 0 {
		return tx
	}
	return tx.Where("("+strings.Join(conds, " OR ")+")", args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches term literally anywhere in a column.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
