package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"mediashare/pkg/apperror"
	"mediashare/pkg/listing"
	"mediashare/pkg/logger"
	"mediashare/pkg/ownership"
	"mediashare/pkg/queue"
	"mediashare/pkg/validation"
	"mediashare/services/tweet/internal/entity"
	"mediashare/services/tweet/internal/repo/persistent"
)

type EventPublisher interface {
	Publish(ctx context.Context, event queue.Event) error
}

type TweetUseCase interface {
	CreateTweet(ctx context.Context, userID string, input TweetInput) (*entity.Tweet, error)
	GetTweet(ctx context.Context, tweetID string) (*entity.Tweet, error)
	ListUserTweets(ctx context.Context, actingUserID, userID string, params listing.Params) (*listing.Page[entity.TweetView], error)
	UpdateTweet(ctx context.Context, userID, tweetID string, input TweetInput) (*entity.Tweet, error)
	DeleteTweet(ctx context.Context, userID, tweetID string) error
}

type TweetInput struct {
	Content string `json:"content" validate:"notblank,max=280"`
}

func (in TweetInput) Validate() error {
	return validation.Struct(in, "Content is required")
}

type tweetUseCase struct {
	tweetRepo persistent.TweetRepository
	events    EventPublisher
	guard     *ownership.Guard[*entity.Tweet]
	logger    *logger.Logger
}

func NewTweetUseCase(tweetRepo persistent.TweetRepository, events EventPublisher, logger *logger.Logger) TweetUseCase {
	return &tweetUseCase{
		tweetRepo: tweetRepo,
		events:    events,
		guard:     ownership.NewGuard[*entity.Tweet]("tweet", tweetRepo.GetByID),
		logger:    logger,
	}
}

func (uc *tweetUseCase) CreateTweet(ctx context.Context, userID string, input TweetInput) (*entity.Tweet, error) {
	if err := validation.ID(userID, "User"); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	tweet := &entity.Tweet{
		OwnerID: userID,
		Content: strings.TrimSpace(input.Content),
	}
	if err := uc.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, apperror.Upstream("Something went wrong while creating the tweet", err)
	}

	uc.publishEvent(queue.EventTweetCreated, tweet)
	return tweet, nil
}

func (uc *tweetUseCase) GetTweet(ctx context.Context, tweetID string) (*entity.Tweet, error) {
	if err := validation.ID(tweetID, "Tweet"); err != nil {
		return nil, err
	}

	tweet, err := uc.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		return nil, writeError(err, "Failed to fetch tweet")
	}
	return tweet, nil
}

func (uc *tweetUseCase) ListUserTweets(ctx context.Context, actingUserID, userID string, params listing.Params) (*listing.Page[entity.TweetView], error) {
	if err := validation.ID(userID, "User"); err != nil {
		return nil, err
	}
	if actingUserID != userID {
		return nil, apperror.Forbidden("You do not have permission to view these tweets")
	}

	exists, err := uc.tweetRepo.UserExists(ctx, userID)
	if err != nil {
		return nil, apperror.Upstream("Failed to load user", err)
	}
	if !exists {
		return nil, apperror.NotFound("User not found")
	}

	params.UserID = userID
	page, err := uc.tweetRepo.List(ctx, listing.Build(params, "content"))
	if err != nil {
		return nil, apperror.Upstream("Failed to fetch tweets", err)
	}
	return page, nil
}

func (uc *tweetUseCase) UpdateTweet(ctx context.Context, userID, tweetID string, input TweetInput) (*entity.Tweet, error) {
	if err := validation.ID(tweetID, "Tweet"); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	tweet, err := uc.guard.Authorize(ctx, userID, tweetID, "update")
	if err != nil {
		return nil, err
	}

	updated, err := uc.tweetRepo.UpdateContent(ctx, tweet.ID, tweet.Version, strings.TrimSpace(input.Content))
	if err != nil {
		return nil, writeError(err, "Error updating tweet")
	}

	uc.publishEvent(queue.EventTweetUpdated, updated)
	return updated, nil
}

func (uc *tweetUseCase) DeleteTweet(ctx context.Context, userID, tweetID string) error {
	if err := validation.ID(tweetID, "Tweet"); err != nil {
		return err
	}

	tweet, err := uc.guard.Authorize(ctx, userID, tweetID, "delete")
	if err != nil {
		return err
	}

	if err := uc.tweetRepo.Delete(ctx, tweet.ID); err != nil {
		return writeError(err, "Error deleting tweet")
	}

	uc.publishEvent(queue.EventTweetDeleted, tweet)
	return nil
}

func (uc *tweetUseCase) publishEvent(eventType string, tweet *entity.Tweet) {
	if uc.events == nil {
		return
	}

	event := queue.Event{
		Type:       eventType,
		ResourceID: tweet.ID,
		OwnerID:    tweet.OwnerID,
		OccurredAt: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := uc.events.Publish(ctx, event); err != nil {
			uc.logger.Error("Failed to publish %s for tweet %s: %v", event.Type, event.ResourceID, err)
		}
	}()
}

func writeError(err error, message string) error {
	switch {
	case errors.Is(err, apperror.ErrRecordNotFound):
		return apperror.NotFound("Tweet not found")
	case errors.Is(err, apperror.ErrVersionConflict):
		return apperror.Conflict("Tweet was modified by another request, reload and try again")
	default:
		return apperror.Upstream(message, err)
	}
}
