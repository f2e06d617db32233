package persistent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"mediashare/pkg/apperror"
	"mediashare/pkg/listing"
	"mediashare/services/video/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	videosCollection = "videos"
	usersCollection  = "users"
)

type videoDocument struct {
	ID           string    `bson:"_id"`
	OwnerID      string    `bson:"owner"`
	Title        string    `bson:"title"`
	Description  string    `bson:"description"`
	VideoURL     string    `bson:"videoFile"`
	ThumbnailURL string    `bson:"thumbnail"`
	Duration     float64   `bson:"duration"`
	IsPublished  bool      `bson:"isPublished"`
	Version      int64     `bson:"version"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

type videoViewDocument struct {
	ID           string    `bson:"_id"`
	Title        string    `bson:"title"`
	Description  string    `bson:"description"`
	ThumbnailURL string    `bson:"thumbnail"`
	Duration     float64   `bson:"duration"`
	IsPublished  bool      `bson:"isPublished"`
	CreatedAt    time.Time `bson:"createdAt"`
	Owner        struct {
		Username string `bson:"username"`
		FullName string `bson:"fullName"`
		Avatar   string `bson:"avatar"`
	} `bson:"owner"`
}

type videoFacet struct {
	Metadata []struct {
		Total int64 `bson:"total"`
	} `bson:"metadata"`
	Docs []videoViewDocument `bson:"docs"`
}

var (
	mongoSearchFields = map[string]string{
		"title":       "title",
		"description": "description",
	}
	mongoSortFields = map[string]string{
		"title":       "title",
		"description": "description",
		"duration":    "duration",
		"isPublished": "isPublished",
		"createdAt":   "createdAt",
		"updatedAt":   "updatedAt",
	}
)

type mongoVideoRepository struct {
	videos *mongo.Collection
}

// NewMongoVideoRepository stores videos in db and joins owners from its
// users collection.
func NewMongoVideoRepository(ctx context.Context, db *mongo.Database) (VideoRepository, error) {
	videos := db.Collection(videosCollection)
	_, err := videos.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create video indexes: %w", err)
	}
	return &mongoVideoRepository{videos: videos}, nil
}

func (r *mongoVideoRepository) Create(ctx context.Context, video *entity.Video) error {
	now := time.Now().UTC()
	if video.ID == "" {
		video.ID = uuid.New().String()
	}
	video.Version = 1
	video.CreatedAt = now
	video.UpdatedAt = now

	_, err := r.videos.InsertOne(ctx, toVideoDocument(video))
	return err
}

func (r *mongoVideoRepository) GetByID(ctx context.Context, id string) (*entity.Video, error) {
	var doc videoDocument
	if err := r.videos.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.ErrRecordNotFound
		}
		return nil, err
	}
	return fromVideoDocument(&doc), nil
}

func (r *mongoVideoRepository) List(ctx context.Context, q listing.Query) (*listing.Page[entity.VideoView], error) {
	cursor, err := r.videos.Aggregate(ctx, videoListPipeline(q))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var facets []videoFacet
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, err
	}

	var total int64
	var docs []entity.VideoView
	if len(facets) > 0 {
		if len(facets[0].Metadata) > 0 {
			total = facets[0].Metadata[0].Total
		}
		docs = make([]entity.VideoView, len(facets[0].Docs))
		for i, d := range facets[0].Docs {
			docs[i] = entity.VideoView{
				ID:           d.ID,
				Title:        d.Title,
				Description:  d.Description,
				ThumbnailURL: d.ThumbnailURL,
				Duration:     d.Duration,
				IsPublished:  d.IsPublished,
				CreatedAt:    d.CreatedAt,
				Owner: entity.Owner{
					Username: d.Owner.Username,
					FullName: d.Owner.FullName,
					Avatar:   d.Owner.Avatar,
				},
			}
		}
	}
	return listing.NewPage(docs, total, q), nil
}

func (r *mongoVideoRepository) Update(ctx context.Context, id string, version int64, patch entity.VideoPatch) (*entity.Video, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.ThumbnailURL != nil {
		set["thumbnail"] = *patch.ThumbnailURL
	}
	if patch.IsPublished != nil {
		set["isPublished"] = *patch.IsPublished
	}

	result, err := r.videos.UpdateOne(ctx,
		bson.M{"_id": id, "version": version},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		count, err := r.videos.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, apperror.ErrRecordNotFound
		}
		return nil, apperror.ErrVersionConflict
	}

	return r.GetByID(ctx, id)
}

func (r *mongoVideoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.videos.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperror.ErrRecordNotFound
	}
	return nil
}

// videoListPipeline filters and sorts videos, joins each to its owner,
// projects the public view and splits the result into a count and a page.
func videoListPipeline(q listing.Query) mongo.Pipeline {
	match := bson.M{}
	if q.Filter.OwnerID != "" {
		match["owner"] = q.Filter.OwnerID
	}
	if q.Filter.HasTerm() {
		regex := primitive.Regex{Pattern: regexp.QuoteMeta(q.Filter.Term), Options: "i"}
		var or bson.A
		for _, name := range q.Filter.SearchFields {
			if field, ok := mongoSearchFields[name]; ok {
				or = append(or, bson.M{field: regex})
			}
		}
		if len(or) > 0 {
			match["$or"] = or
		}
	}

	sort := bson.D{}
	field, sorted := mongoSortFields[q.Sort.Field]
	if sorted {
		dir := 1
		if q.Sort.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: field, Value: dir})
	}
	if !sorted || field != "createdAt" {
		sort = append(sort, bson.E{Key: "createdAt", Value: 1})
	}
	sort = append(sort, bson.E{Key: "_id", Value: 1})

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: sort}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "owner"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$unwind", Value: "$owner"}},
		{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "description", Value: 1},
			{Key: "thumbnail", Value: 1},
			{Key: "duration", Value: 1},
			{Key: "isPublished", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "owner.username", Value: 1},
			{Key: "owner.fullName", Value: 1},
			{Key: "owner.avatar", Value: 1},
		}}},
		{{Key: "$facet", Value: bson.D{
			{Key: "metadata", Value: bson.A{bson.D{{Key: "$count", Value: "total"}}}},
			{Key: "docs", Value: bson.A{
				bson.D{{Key: "$skip", Value: int64(q.Offset())}},
				bson.D{{Key: "$limit", Value: int64(q.Limit)}},
			}},
		}}},
	}
}

func toVideoDocument(v *entity.Video) *videoDocument {
	return &videoDocument{
		ID:           v.ID,
		OwnerID:      v.OwnerID,
		Title:        v.Title,
		Description:  v.Description,
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		Duration:     v.Duration,
		IsPublished:  v.IsPublished,
		Version:      v.Version,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func fromVideoDocument(d *videoDocument) *entity.Video {
	return &entity.Video{
		ID:           d.ID,
		OwnerID:      d.OwnerID,
		Title:        d.Title,
		Description:  d.Description,
		VideoURL:     d.VideoURL,
		ThumbnailURL: d.ThumbnailURL,
		Duration:     d.Duration,
		IsPublished:  d.IsPublished,
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
