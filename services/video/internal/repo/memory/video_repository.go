// Package memory holds an in-process video store used by tests and local runs.
package memory

import (
	"cmp"
	"context"
	"strings"
	"sync"
	"time"

	"mediashare/pkg/apperror"
	"mediashare/pkg/listing"
	"mediashare/services/video/internal/entity"
	"mediashare/services/video/internal/repo/persistent"

	"github.com/google/uuid"
)

type VideoRepository struct {
	mu     sync.RWMutex
	videos map[string]entity.Video
	users  map[string]entity.Owner
	now    func() time.Time
}

var _ persistent.VideoRepository = (*VideoRepository)(nil)

func NewVideoRepository() *VideoRepository {
	return &VideoRepository{
		videos: make(map[string]entity.Video),
		users:  make(map[string]entity.Owner),
		now:    time.Now,
	}
}

// PutUser registers or replaces the profile joined onto listed videos.
func (r *VideoRepository) PutUser(id string, owner entity.Owner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = owner
}

// RemoveUser drops a user; their videos stay stored but are no longer listed.
func (r *VideoRepository) RemoveUser(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

func (r *VideoRepository) Create(ctx context.Context, video *entity.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if video.ID == "" {
		video.ID = uuid.New().String()
	}
	video.Version = 1
	video.CreatedAt = now
	video.UpdatedAt = now
	r.videos[video.ID] = *video
	return nil
}

func (r *VideoRepository) GetByID(ctx context.Context, id string) (*entity.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	video, ok := r.videos[id]
	if !ok {
		return nil, apperror.ErrRecordNotFound
	}
	return &video, nil
}

func (r *VideoRepository) List(ctx context.Context, q listing.Query) (*listing.Page[entity.VideoView], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]entity.Video, 0, len(r.videos))
	for _, v := range r.videos {
		items = append(items, v)
	}
	return r.pipeline().Run(items, q), nil
}

func (r *VideoRepository) Update(ctx context.Context, id string, version int64, patch entity.VideoPatch) (*entity.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	video, ok := r.videos[id]
	if !ok {
		return nil, apperror.ErrRecordNotFound
	}
	if video.Version != version {
		return nil, apperror.ErrVersionConflict
	}

	patch.Apply(&video)
	video.Version++
	video.UpdatedAt = r.now()
	r.videos[id] = video
	return &video, nil
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.videos[id]; !ok {
		return apperror.ErrRecordNotFound
	}
	delete(r.videos, id)
	return nil
}

// pipeline must be called with r.mu held.
func (r *VideoRepository) pipeline() listing.Pipeline[entity.Video, entity.VideoView] {
	return listing.Pipeline[entity.Video, entity.VideoView]{
		Field: func(v entity.Video, name string) (string, bool) {
			switch name {
			case "title":
				return v.Title, true
			case "description":
				return v.Description, true
			}
			return "", false
		},
		OwnerID: func(v entity.Video) string { return v.OwnerID },
		Compare: func(a, b entity.Video, field string) (int, bool) {
			switch field {
			case "title":
				return strings.Compare(a.Title, b.Title), true
			case "description":
				return strings.Compare(a.Description, b.Description), true
			case "duration":
				return cmp.Compare(a.Duration, b.Duration), true
			case "isPublished":
				return compareBool(a.IsPublished, b.IsPublished), true
			case "createdAt":
				return a.CreatedAt.Compare(b.CreatedAt), true
			case "updatedAt":
				return a.UpdatedAt.Compare(b.UpdatedAt), true
			}
			return 0, false
		},
		Tiebreak: func(a, b entity.Video) int {
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		},
		Join: func(v entity.Video) (entity.VideoView, bool) {
			owner, ok := r.users[v.OwnerID]
			if !ok {
				return entity.VideoView{}, false
			}
			return entity.VideoView{
				ID:           v.ID,
				Title:        v.Title,
				Description:  v.Description,
				ThumbnailURL: v.ThumbnailURL,
				Duration:     v.Duration,
				IsPublished:  v.IsPublished,
				CreatedAt:    v.CreatedAt,
				Owner:        owner,
			}, true
		},
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
