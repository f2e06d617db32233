package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"mediashare/pkg/apperror"
	"mediashare/pkg/listing"
	"mediashare/services/tweet/internal/entity"
	"mediashare/services/tweet/internal/repo/persistent"

	"github.com/google/uuid"
)

type TweetRepository struct {
	mu     sync.RWMutex
	tweets map[string]entity.Tweet
	users  map[string]entity.Owner
	now    func() time.Time
}

var _ persistent.TweetRepository = (*TweetRepository)(nil)

func NewTweetRepository() *TweetRepository {
	return &TweetRepository{
		tweets: make(map[string]entity.Tweet),
		users:  make(map[string]entity.Owner),
		now:    time.Now,
	}
}

func (r *TweetRepository) PutUser(id string, owner entity.Owner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = owner
}

func (r *TweetRepository) RemoveUser(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

func (r *TweetRepository) Create(ctx context.Context, tweet *entity.Tweet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if tweet.ID == "" {
		tweet.ID = uuid.New().String()
	}
	tweet.Version = 1
	tweet.CreatedAt = now
	tweet.UpdatedAt = now
	r.tweets[tweet.ID] = *tweet
	return nil
}

func (r *TweetRepository) GetByID(ctx context.Context, id string) (*entity.Tweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tweet, ok := r.tweets[id]
	if !ok {
		return nil, apperror.ErrRecordNotFound
	}
	return &tweet, nil
}

func (r *TweetRepository) List(ctx context.Context, q listing.Query) (*listing.Page[entity.TweetView], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]entity.Tweet, 0, len(r.tweets))
	for _, t := range r.tweets {
		items = append(items, t)
	}

	pipeline := listing.Pipeline[entity.Tweet, entity.TweetView]{
		Field: func(t entity.Tweet, name string) (string, bool) {
			if name == "content" {
				return t.Content, true
			}
			return "", false
		},
		OwnerID: func(t entity.Tweet) string { return t.OwnerID },
		Compare: func(a, b entity.Tweet, field string) (int, bool) {
			switch field {
			case "content":
				return strings.Compare(a.Content, b.Content), true
			case "createdAt":
				return a.CreatedAt.Compare(b.CreatedAt), true
			case "updatedAt":
				return a.UpdatedAt.Compare(b.UpdatedAt), true
			}
			return 0, false
		},
		Tiebreak: func(a, b entity.Tweet) int {
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		},
		Join: func(t entity.Tweet) (entity.TweetView, bool) {
			owner, ok := r.users[t.OwnerID]
			if !ok {
				return entity.TweetView{}, false
			}
			return entity.TweetView{
				ID:        t.ID,
				Content:   t.Content,
				CreatedAt: t.CreatedAt,
				UpdatedAt: t.UpdatedAt,
				Owner:     owner,
			}, true
		},
	}
	return pipeline.Run(items, q), nil
}

func (r *TweetRepository) UpdateContent(ctx context.Context, id string, version int64, content string) (*entity.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tweet, ok := r.tweets[id]
	if !ok {
		return nil, apperror.ErrRecordNotFound
	}
	if tweet.Version != version {
		return nil, apperror.ErrVersionConflict
	}

	tweet.Content = content
	tweet.Version++
	tweet.UpdatedAt = r.now()
	r.tweets[id] = tweet
	return &tweet, nil
}

func (r *TweetRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tweets[id]; !ok {
		return apperror.ErrRecordNotFound
	}
	delete(r.tweets, id)
	return nil
}

func (r *TweetRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[userID]
	return ok, nil
}
