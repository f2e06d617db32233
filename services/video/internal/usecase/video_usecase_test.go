package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"mediashare/pkg/apperror"
	"mediashare/pkg/listing"
	"mediashare/pkg/logger"
	"mediashare/pkg/s3"
	"mediashare/services/video/internal/entity"
	"mediashare/services/video/internal/repo/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fixedProber float64

func (p fixedProber) Duration(ctx context.Context, path string) (float64, error) {
	return float64(p), nil
}

// recordingStore wraps the in-memory store, records every call and can fail
// chosen upload attempts.
type recordingStore struct {
	*s3.MemoryStore
	calls      []string
	uploads    int
	failUpload map[int]bool
}

func (s *recordingStore) Upload(ctx context.Context, folder, localPath string) (*s3.Asset, error) {
	s.calls = append(s.calls, "upload")
	s.uploads++
	if s.failUpload[s.uploads] {
		return nil, errors.New("storage unavailable")
	}
	return s.MemoryStore.Upload(ctx, folder, localPath)
}

func (s *recordingStore) Exists(ctx context.Context, publicID string) (bool, error) {
	s.calls = append(s.calls, "exists")
	return s.MemoryStore.Exists(ctx, publicID)
}

func (s *recordingStore) Delete(ctx context.Context, publicID string) (bool, error) {
	s.calls = append(s.calls, "delete")
	return s.MemoryStore.Delete(ctx, publicID)
}

func (s *recordingStore) PublicIDFromURL(rawURL string) (string, error) {
	s.calls = append(s.calls, "publicID")
	return s.MemoryStore.PublicIDFromURL(rawURL)
}

// staleRepo hands out videos with an outdated version, as if another
// request committed between the read and the write.
type staleRepo struct {
	*memory.VideoRepository
}

func (r staleRepo) GetByID(ctx context.Context, id string) (*entity.Video, error) {
	video, err := r.VideoRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	video.Version--
	return video, nil
}

type fixture struct {
	uc      VideoUseCase
	repo    *memory.VideoRepository
	store   *recordingStore
	ownerID string
	otherID string
	dir     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := memory.NewVideoRepository()
	store := &recordingStore{
		MemoryStore: s3.NewMemoryStore("media", fixedProber(12.5)),
		failUpload:  map[int]bool{},
	}
	f := &fixture{
		repo:    repo,
		store:   store,
		ownerID: uuid.New().String(),
		otherID: uuid.New().String(),
		dir:     t.TempDir(),
	}
	repo.PutUser(f.ownerID, entity.Owner{Username: "alice", FullName: "Alice", Avatar: "a.png"})
	repo.PutUser(f.otherID, entity.Owner{Username: "bob", FullName: "Bob"})
	f.uc = NewVideoUseCase(repo, store, nil, logger.NewWithWriters(io.Discard, io.Discard))
	return f
}

func (f *fixture) file(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func (f *fixture) publish(t *testing.T, title, description string) *entity.Video {
	t.Helper()
	video, err := f.uc.PublishVideo(context.Background(), f.ownerID, PublishVideoInput{
		Title:         title,
		Description:   description,
		VideoFilePath: f.file(t, uuid.NewString()+".mp4", []byte("fake video payload")),
		ThumbnailPath: f.file(t, uuid.NewString()+".png", pngBytes),
	})
	require.NoError(t, err)
	f.store.calls = nil
	return video
}

func strPtr(s string) *string { return &s }

func TestPublishVideo(t *testing.T) {
	f := newFixture(t)

	video := f.publish(t, "  Ocean Waves ", "Surf footage")

	assert.Equal(t, f.ownerID, video.OwnerID)
	assert.Equal(t, "Ocean Waves", video.Title)
	assert.False(t, video.IsPublished)
	assert.NotEmpty(t, video.VideoURL)
	assert.NotEmpty(t, video.ThumbnailURL)
	assert.Equal(t, 12.5, video.Duration)
	assert.Equal(t, int64(1), video.Version)
	assert.Len(t, f.store.Keys(), 2)

	stored, err := f.repo.GetByID(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Equal(t, video.ID, stored.ID)
}

func TestPublishVideo_ValidationRunsBeforeUpload(t *testing.T) {
	f := newFixture(t)
	videoPath := f.file(t, "v.mp4", []byte("payload"))
	thumbPath := f.file(t, "t.png", pngBytes)

	tests := []struct {
		name    string
		input   PublishVideoInput
		message string
	}{
		{"blank title", PublishVideoInput{Title: "  ", Description: "d", VideoFilePath: videoPath, ThumbnailPath: thumbPath}, "All fields are required"},
		{"missing description", PublishVideoInput{Title: "t", VideoFilePath: videoPath, ThumbnailPath: thumbPath}, "All fields are required"},
		{"missing video", PublishVideoInput{Title: "t", Description: "d", ThumbnailPath: thumbPath}, "Video file is required"},
		{"missing thumbnail", PublishVideoInput{Title: "t", Description: "d", VideoFilePath: videoPath}, "Thumbnail file is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.PublishVideo(context.Background(), f.ownerID, tt.input)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.KindValidation))
			assert.Equal(t, tt.message, apperror.Message(err))
		})
	}
	assert.Empty(t, f.store.calls)
}

func TestPublishVideo_ThumbnailUploadFailureRemovesVideoAsset(t *testing.T) {
	f := newFixture(t)
	f.store.failUpload[2] = true

	_, err := f.uc.PublishVideo(context.Background(), f.ownerID, PublishVideoInput{
		Title:         "t",
		Description:   "d",
		VideoFilePath: f.file(t, "v.mp4", []byte("payload")),
		ThumbnailPath: f.file(t, "t.png", pngBytes),
	})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindUpstream))
	assert.Empty(t, f.store.Keys())

	page, err := f.repo.List(context.Background(), listing.Build(listing.Params{}))
	require.NoError(t, err)
	assert.Zero(t, page.TotalDocs)
}

func TestUpdateVideo_TextOnlyNeverTouchesAssets(t *testing.T) {
	f := newFixture(t)
	video := f.publish(t, "Old", "Old description")

	updated, err := f.uc.UpdateVideo(context.Background(), f.ownerID, video.ID, UpdateVideoInput{
		Title: strPtr("New title"),
	})

	require.NoError(t, err)
	assert.Empty(t, f.store.calls)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "Old description", updated.Description)
	assert.Equal(t, video.ThumbnailURL, updated.ThumbnailURL)
	assert.Equal(t, video.Version+1, updated.Version)
}

func TestUpdateVideo_BlankProvidedField(t *testing.T) {
	f := newFixture(t)
	video := f.publish(t, "Old", "Old description")

	_, err := f.uc.UpdateVideo(context.Background(), f.ownerID, video.ID, UpdateVideoInput{
		Description: strPtr(""),
	})

	require.Error(t, err)
	assert.Equal(t, "All fields are required", apperror.Message(err))
}

func TestUpdateVideo_ReplacesThumbnail(t *testing.T) {
	f := newFixture(t)
	video := f.publish(t, "Old", "d")
	oldID, err := f.store.MemoryStore.PublicIDFromURL(video.ThumbnailURL)
	require.NoError(t, err)

	updated, err := f.uc.UpdateVideo(context.Background(), f.ownerID, video.ID, UpdateVideoInput{
		ThumbnailPath: f.file(t, "new.png", pngBytes),
	})

	require.NoError(t, err)
	assert.NotEqual(t, video.ThumbnailURL, updated.ThumbnailURL)
	assert.Equal(t, []string{"publicID", "exists", "upload", "delete"}, f.store.calls)

	exists, err := f.store.MemoryStore.Exists(context.Background(), oldID)
	require.NoError(t, err)
	assert.False(t, exists)

	newID, err := f.store.MemoryStore.PublicIDFromURL(updated.ThumbnailURL)
	require.NoError(t, err)
	present, err := f.store.MemoryStore.Exists(context.Background(), newID)
	require.NoError(t, err)
	assert.True(t, present)
}

func TestUpdateVideo_MissingOldThumbnail(t *testing.T) {
	f := newFixture(t)
	video := f.publish(t, "Old", "d")
	oldID, err := f.store.MemoryStore.PublicIDFromURL(video.ThumbnailURL)
	require.NoError(t, err)
	_, err = f.store.MemoryStore.Delete(context.Background(), oldID)
	require.NoError(t, err)

	_, err = f.uc.UpdateVideo(context.Background(), f.ownerID, video.ID, UpdateVideoInput{
		Title:         strPtr("New"),
		ThumbnailPath: f.file(t, "new.png", pngBytes),
	})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, "File not found for deleting", apperror.Message(err))
	assert.NotContains(t, f.store.calls, "upload")

	stored, err := f.repo.GetByID(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Equal(t, "Old", stored.Title)
	assert.Equal(t, video.Version, stored.Version)
}

func TestUpdateVideo_UploadFailureLeavesRecord(t *testing.T) {
	f := newFixture(t)
	video := f.publish(t, "Old", "d")
	f.store.failUpload[f.store.uploads+1] = true

	_, err := f.uc.UpdateVideo(context.Background(), f.ownerID, video.ID, UpdateVideoInput{
		Title:         strPtr("New"),
		ThumbnailPath: f.file(t, "new.png", pngBytes),
	})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindUpstream))
	stored, err := f.repo.GetByID(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Equal(t, *video, *stored)
	assert.Len(t, f.store.Keys(), 2)
}

func TestUpdateVideo_StaleVersionConflicts(t *testing.T) {
	f := newFixture(t)
	video := f.publish(t, "Old", "d")
	_, err := f.repo.Update(context.Background(), video.ID, video.Version, entity.VideoPatch{Title: strPtr("Concurrent")})
	require.NoError(t, err)

	uc := NewVideoUseCase(staleRepo{f.repo}, f.store, nil, logger.NewWithWriters(io.Discard, io.Discard))
	_, err = uc.UpdateVideo(context.Background(), f.ownerID, video.ID, UpdateVideoInput{
		Title:         strPtr("Mine"),
		ThumbnailPath: f.file(t, "new.png", pngBytes),
	})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, 409, apperror.HTTPStatus(err))

	stored, err := f.repo.GetByID(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Equal(t, "Concurrent", stored.Title)
	assert.Equal(t, video.ThumbnailURL, stored.ThumbnailURL)
	assert.Len(t, f.store.Keys(), 2, "uploaded replacement must be discarded")
}

func TestMutationsByNonOwnerAreForbidden(t *testing.T) {
	f := newFixture(t)
	video := f.publish(t, "Mine", "d")
	ctx := context.Background()

	_, err := f.uc.UpdateVideo(ctx, f.otherID, video.ID, UpdateVideoInput{Title: strPtr("Hijack")})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
	assert.Equal(t, "You do not have permission to update this video", apperror.Message(err))

	err = f.uc.DeleteVideo(ctx, f.otherID, video.ID)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.uc.TogglePublishStatus(ctx, f.otherID, video.ID)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	stored, err := f.repo.GetByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, *video, *stored)
	assert.Empty(t, f.store.calls)
}

func TestDeleteVideo_CascadesAssets(t *testing.T) {
	f := newFixture(t)
	video := f.publish(t, "Bye", "d")
	keep := f.publish(t, "Stay", "d")

	require.NoError(t, f.uc.DeleteVideo(context.Background(), f.ownerID, video.ID))

	_, err := f.uc.GetVideo(context.Background(), video.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Len(t, f.store.Keys(), 2)

	_, err = f.uc.GetVideo(context.Background(), keep.ID)
	assert.NoError(t, err)
}

func TestDeleteVideo_AbsentAssetsAreNotAnError(t *testing.T) {
	f := newFixture(t)
	video := f.publish(t, "Bye", "d")
	for _, key := range f.store.Keys() {
		_, err := f.store.MemoryStore.Delete(context.Background(), key)
		require.NoError(t, err)
	}

	assert.NoError(t, f.uc.DeleteVideo(context.Background(), f.ownerID, video.ID))
}

func TestDeleteVideo_Missing(t *testing.T) {
	f := newFixture(t)

	err := f.uc.DeleteVideo(context.Background(), f.ownerID, uuid.NewString())

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, "Video not found", apperror.Message(err))
	assert.Empty(t, f.store.calls)
}

func TestTogglePublishStatus_TwiceRestores(t *testing.T) {
	f := newFixture(t)
	video := f.publish(t, "t", "d")

	first, err := f.uc.TogglePublishStatus(context.Background(), f.ownerID, video.ID)
	require.NoError(t, err)
	assert.True(t, first.IsPublished)

	second, err := f.uc.TogglePublishStatus(context.Background(), f.ownerID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, video.IsPublished, second.IsPublished)
	assert.Equal(t, video.Version+2, second.Version)
}

func TestGetVideo_InvalidID(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.GetVideo(context.Background(), "not-a-uuid")

	require.Error(t, err)
	assert.Equal(t, "Video Id is not valid", apperror.Message(err))
	assert.Equal(t, 400, apperror.HTTPStatus(err))
}

func TestListVideos(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 12; i++ {
		f.publish(t, fmt.Sprintf("Cat clip %d", i), "d")
	}
	for i := 0; i < 3; i++ {
		f.publish(t, fmt.Sprintf("Dog clip %d", i), "d")
	}

	page, err := f.uc.ListVideos(context.Background(), listing.Params{Query: "cat", Page: "2", Limit: "5"})

	require.NoError(t, err)
	assert.Len(t, page.Docs, 5)
	assert.Equal(t, int64(12), page.TotalDocs)
	assert.Equal(t, 3, page.TotalPages)
	for _, doc := range page.Docs {
		assert.Contains(t, doc.Title, "Cat")
		assert.Equal(t, "alice", doc.Owner.Username)
	}
}

func TestListVideos_InvalidUserID(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.ListVideos(context.Background(), listing.Params{UserID: "nope"})

	require.Error(t, err)
	assert.Equal(t, "User Id is not valid", apperror.Message(err))
}
