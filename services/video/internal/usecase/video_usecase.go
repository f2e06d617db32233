package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediashare/pkg/apperror"
	"mediashare/pkg/listing"
	"mediashare/pkg/logger"
	"mediashare/pkg/ownership"
	"mediashare/pkg/queue"
	"mediashare/pkg/s3"
	"mediashare/pkg/validation"
	"mediashare/services/video/internal/entity"
	"mediashare/services/video/internal/repo/persistent"
)

// AssetStore is the blob storage the use case uploads video files and
// thumbnails to. *s3.Client and *s3.MemoryStore implement it.
type AssetStore interface {
	Upload(ctx context.Context, folder, localPath string) (*s3.Asset, error)
	Exists(ctx context.Context, publicID string) (bool, error)
	Delete(ctx context.Context, publicID string) (bool, error)
	PublicIDFromURL(rawURL string) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event queue.Event) error
}

type VideoUseCase interface {
	ListVideos(ctx context.Context, params listing.Params) (*listing.Page[entity.VideoView], error)
	PublishVideo(ctx context.Context, userID string, input PublishVideoInput) (*entity.Video, error)
	GetVideo(ctx context.Context, videoID string) (*entity.Video, error)
	UpdateVideo(ctx context.Context, userID, videoID string, input UpdateVideoInput) (*entity.Video, error)
	DeleteVideo(ctx context.Context, userID, videoID string) error
	TogglePublishStatus(ctx context.Context, userID, videoID string) (*entity.Video, error)
}

// PublishVideoInput carries the text fields and the local paths of the
// uploaded video and thumbnail.
type PublishVideoInput struct {
	Title         string `json:"title" validate:"notblank,max=255"`
	Description   string `json:"description" validate:"notblank"`
	VideoFilePath string `json:"videoFile"`
	ThumbnailPath string `json:"thumbnail"`
}

func (in PublishVideoInput) Validate() error {
	if err := validation.Struct(in, "All fields are required"); err != nil {
		return err
	}
	if in.VideoFilePath == "" {
		return apperror.Validation("Video file is required")
	}
	if in.ThumbnailPath == "" {
		return apperror.Validation("Thumbnail file is required")
	}
	return nil
}

// UpdateVideoInput holds the optional changes of an update. A nil text field
// is left as is; ThumbnailPath is empty when no replacement was uploaded.
type UpdateVideoInput struct {
	Title         *string `json:"title" validate:"omitempty,notblank,max=255"`
	Description   *string `json:"description" validate:"omitempty,notblank"`
	ThumbnailPath string  `json:"thumbnail"`
}

func (in UpdateVideoInput) Validate() error {
	return validation.Struct(in, "All fields are required")
}

var searchFields = []string{"title", "description"}

const eventTimeout = 5 * time.Second

type videoUseCase struct {
	videoRepo persistent.VideoRepository
	assets    AssetStore
	events    EventPublisher
	guard     *ownership.Guard[*entity.Video]
	logger    *logger.Logger
}

// NewVideoUseCase wires the orchestrator. events may be nil.
func NewVideoUseCase(
	videoRepo persistent.VideoRepository,
	assets AssetStore,
	events EventPublisher,
	logger *logger.Logger,
) VideoUseCase {
	return &videoUseCase{
		videoRepo: videoRepo,
		assets:    assets,
		events:    events,
		guard:     ownership.NewGuard[*entity.Video]("video", videoRepo.GetByID),
		logger:    logger,
	}
}

func (uc *videoUseCase) ListVideos(ctx context.Context, params listing.Params) (*listing.Page[entity.VideoView], error) {
	if strings.TrimSpace(params.UserID) != "" {
		if err := validation.ID(strings.TrimSpace(params.UserID), "User"); err != nil {
			return nil, err
		}
	}

	page, err := uc.videoRepo.List(ctx, listing.Build(params, searchFields...))
	if err != nil {
		return nil, apperror.Upstream("Failed to fetch videos", err)
	}
	return page, nil
}

func (uc *videoUseCase) PublishVideo(ctx context.Context, userID string, input PublishVideoInput) (*entity.Video, error) {
	if err := validation.ID(userID, "User"); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	videoAsset, err := uc.assets.Upload(ctx, videoFolder(userID), input.VideoFilePath)
	if err != nil {
		return nil, apperror.Upstream("Error uploading video file", err)
	}

	thumbnailAsset, err := uc.assets.Upload(ctx, thumbnailFolder(userID), input.ThumbnailPath)
	if err != nil {
		uc.discardAsset(ctx, videoAsset.PublicID)
		return nil, apperror.Upstream("Error uploading thumbnail", err)
	}

	video := &entity.Video{
		OwnerID:      userID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		VideoURL:     videoAsset.URL,
		ThumbnailURL: thumbnailAsset.URL,
		Duration:     videoAsset.Duration,
		IsPublished:  false,
	}

	if err := uc.videoRepo.Create(ctx, video); err != nil {
		uc.discardAsset(ctx, videoAsset.PublicID)
		uc.discardAsset(ctx, thumbnailAsset.PublicID)
		return nil, apperror.Upstream("Something went wrong while saving the video", err)
	}

	uc.publishEvent(queue.EventVideoPublished, video, 1)
	return video, nil
}

func (uc *videoUseCase) GetVideo(ctx context.Context, videoID string) (*entity.Video, error) {
	if err := validation.ID(videoID, "Video"); err != nil {
		return nil, err
	}

	video, err := uc.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, apperror.ErrRecordNotFound) {
			return nil, apperror.NotFound("Video not found")
		}
		return nil, apperror.Upstream("Failed to fetch video", err)
	}
	return video, nil
}

func (uc *videoUseCase) UpdateVideo(ctx context.Context, userID, videoID string, input UpdateVideoInput) (*entity.Video, error) {
	if err := validation.ID(videoID, "Video"); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	video, err := uc.guard.Authorize(ctx, userID, videoID, "update")
	if err != nil {
		return nil, err
	}

	patch := entity.VideoPatch{
		Title:       trimmed(input.Title),
		Description: trimmed(input.Description),
	}

	var oldThumbnailID string
	var newThumbnail *s3.Asset
	if input.ThumbnailPath != "" {
		oldThumbnailID, err = uc.assets.PublicIDFromURL(video.ThumbnailURL)
		if err != nil {
			return nil, apperror.Internal("stored thumbnail url is invalid", err)
		}

		exists, err := uc.assets.Exists(ctx, oldThumbnailID)
		if err != nil {
			return nil, apperror.Upstream("Error checking thumbnail", err)
		}
		if !exists {
			return nil, apperror.NotFound("File not found for deleting")
		}

		newThumbnail, err = uc.assets.Upload(ctx, thumbnailFolder(video.OwnerID), input.ThumbnailPath)
		if err != nil {
			return nil, apperror.Upstream("Error uploading thumbnail", err)
		}
		patch.ThumbnailURL = &newThumbnail.URL
	}

	updated, err := uc.videoRepo.Update(ctx, video.ID, video.Version, patch)
	if err != nil {
		if newThumbnail != nil {
			uc.discardAsset(ctx, newThumbnail.PublicID)
		}
		return nil, writeError(err, "Error updating video details")
	}

	if newThumbnail != nil {
		uc.discardAsset(ctx, oldThumbnailID)
	}

	uc.publishEvent(queue.EventVideoUpdated, updated, 0)
	return updated, nil
}

func (uc *videoUseCase) DeleteVideo(ctx context.Context, userID, videoID string) error {
	if err := validation.ID(videoID, "Video"); err != nil {
		return err
	}

	video, err := uc.guard.Authorize(ctx, userID, videoID, "delete")
	if err != nil {
		return err
	}

	if err := uc.videoRepo.Delete(ctx, video.ID); err != nil {
		return writeError(err, "Error deleting video")
	}

	for _, assetURL := range []string{video.VideoURL, video.ThumbnailURL} {
		publicID, err := uc.assets.PublicIDFromURL(assetURL)
		if err != nil {
			uc.logger.Warn("Skipping cleanup of video %s asset %q: %v", video.ID, assetURL, err)
			continue
		}
		uc.discardAsset(ctx, publicID)
	}

	uc.publishEvent(queue.EventVideoDeleted, video, 0)
	return nil
}

func (uc *videoUseCase) TogglePublishStatus(ctx context.Context, userID, videoID string) (*entity.Video, error) {
	if err := validation.ID(videoID, "Video"); err != nil {
		return nil, err
	}

	video, err := uc.guard.Authorize(ctx, userID, videoID, "change the publish status of")
	if err != nil {
		return nil, err
	}

	published := !video.IsPublished
	updated, err := uc.videoRepo.Update(ctx, video.ID, video.Version, entity.VideoPatch{IsPublished: &published})
	if err != nil {
		return nil, writeError(err, "Error changing publish status")
	}

	uc.publishEvent(queue.EventVideoToggled, updated, 0)
	return updated, nil
}

// discardAsset removes an asset best-effort; failures are only logged.
func (uc *videoUseCase) discardAsset(ctx context.Context, publicID string) {
	found, err := uc.assets.Delete(ctx, publicID)
	if err != nil {
		uc.logger.Error("Failed to delete asset %s: %v", publicID, err)
		return
	}
	if !found {
		uc.logger.Warn("Asset %s was already gone", publicID)
	}
}

func (uc *videoUseCase) publishEvent(eventType string, video *entity.Video, priority int) {
	if uc.events == nil {
		return
	}

	event := queue.Event{
		Type:       eventType,
		ResourceID: video.ID,
		OwnerID:    video.OwnerID,
		Priority:   priority,
		OccurredAt: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()
		if err := uc.events.Publish(ctx, event); err != nil {
			uc.logger.Error("Failed to publish %s for video %s: %v", event.Type, event.ResourceID, err)
		}
	}()
}

func writeError(err error, message string) error {
	switch {
	case errors.Is(err, apperror.ErrRecordNotFound):
		return apperror.NotFound("Video not found")
	case errors.Is(err, apperror.ErrVersionConflict):
		return apperror.Conflict("Video was modified by another request, reload and try again")
	default:
		return apperror.Upstream(message, err)
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func videoFolder(userID string) string {
	return fmt.Sprintf("videos/%s", userID)
}

func thumbnailFolder(userID string) string {
	return fmt.Sprintf("thumbnails/%s", userID)
}
