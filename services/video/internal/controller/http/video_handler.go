package http

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"mediashare/pkg/apperror"
	"mediashare/pkg/listing"
	"mediashare/pkg/logger"
	"mediashare/pkg/middleware"
	"mediashare/pkg/response"
	"mediashare/services/video/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VideoHandler struct {
	videoUseCase usecase.VideoUseCase
	uploadDir    string
	logger       *logger.Logger
}

func NewVideoHandler(videoUseCase usecase.VideoUseCase, uploadDir string, logger *logger.Logger) *VideoHandler {
	return &VideoHandler{
		videoUseCase: videoUseCase,
		uploadDir:    uploadDir,
		logger:       logger,
	}
}

type PublishVideoRequest struct {
	Title       string `form:"title"`
	Description string `form:"description"`
}

type UpdateVideoRequest struct {
	Title       *string `form:"title"`
	Description *string `form:"description"`
}

// ListVideos godoc
// @Summary      List videos
// @Description  Search, sort and paginate videos joined with their owner's profile
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10)
// @Param        query query string false "Case-insensitive search over title and description"
// @Param        sortBy query string false "Sort field" Enums(title, description, duration, isPublished, createdAt, updatedAt)
// @Param        sortType query string false "Sort direction" Enums(asc, desc)
// @Param        userId query string false "Only videos owned by this user"
// @Success      200  {object}  response.Envelope{data=listing.Page[entity.VideoView]}
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      500  {object}  response.ErrorEnvelope
// @Router       /videos [get]
func (h *VideoHandler) ListVideos(c *gin.Context) {
	var params listing.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, apperror.Validation("Invalid query parameters"))
		return
	}

	page, err := h.videoUseCase.ListVideos(c.Request.Context(), params)
	if err != nil {
		h.fail(c, "list videos", err)
		return
	}

	response.JSON(c, http.StatusOK, page, "Videos fetched successfully")
}

// PublishVideo godoc
// @Summary      Publish a video
// @Description  Upload a video file and its thumbnail. The video starts unpublished.
// @Tags         videos
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title formData string true "Video title"
// @Param        description formData string true "Video description"
// @Param        videoFile formData file true "Video file"
// @Param        thumbnail formData file true "Thumbnail image"
// @Success      201  {object}  response.Envelope{data=entity.Video}
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      500  {object}  response.ErrorEnvelope
// @Router       /videos [post]
func (h *VideoHandler) PublishVideo(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req PublishVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, apperror.Validation("Invalid request body"))
		return
	}

	videoPath, err := h.saveUpload(c, "videoFile")
	if err != nil {
		h.fail(c, "store video upload", err)
		return
	}
	defer h.removeUpload(videoPath)

	thumbnailPath, err := h.saveUpload(c, "thumbnail")
	if err != nil {
		h.fail(c, "store thumbnail upload", err)
		return
	}
	defer h.removeUpload(thumbnailPath)

	video, err := h.videoUseCase.PublishVideo(c.Request.Context(), userID, usecase.PublishVideoInput{
		Title:         req.Title,
		Description:   req.Description,
		VideoFilePath: videoPath,
		ThumbnailPath: thumbnailPath,
	})
	if err != nil {
		h.fail(c, "publish video", err)
		return
	}

	response.JSON(c, http.StatusCreated, video, "Video uploaded successfully")
}

// GetVideo godoc
// @Summary      Get video by ID
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        videoId path string true "Video ID"
// @Success      200  {object}  response.Envelope{data=entity.Video}
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      404  {object}  response.ErrorEnvelope
// @Router       /videos/{videoId} [get]
func (h *VideoHandler) GetVideo(c *gin.Context) {
	video, err := h.videoUseCase.GetVideo(c.Request.Context(), c.Param("videoId"))
	if err != nil {
		h.fail(c, "get video", err)
		return
	}

	response.JSON(c, http.StatusOK, video, "Video fetched successfully")
}

// UpdateVideo godoc
// @Summary      Update video details
// @Description  Change title and/or description and optionally replace the thumbnail. Owner only.
// @Tags         videos
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        videoId path string true "Video ID"
// @Param        title formData string false "New title"
// @Param        description formData string false "New description"
// @Param        thumbnail formData file false "Replacement thumbnail"
// @Success      200  {object}  response.Envelope{data=entity.Video}
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      403  {object}  response.ErrorEnvelope
// @Failure      404  {object}  response.ErrorEnvelope
// @Failure      409  {object}  response.ErrorEnvelope
// @Router       /videos/{videoId} [patch]
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req UpdateVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, apperror.Validation("Invalid request body"))
		return
	}

	thumbnailPath, err := h.saveUpload(c, "thumbnail")
	if err != nil {
		h.fail(c, "store thumbnail upload", err)
		return
	}
	defer h.removeUpload(thumbnailPath)

	video, err := h.videoUseCase.UpdateVideo(c.Request.Context(), userID, c.Param("videoId"), usecase.UpdateVideoInput{
		Title:         req.Title,
		Description:   req.Description,
		ThumbnailPath: thumbnailPath,
	})
	if err != nil {
		h.fail(c, "update video", err)
		return
	}

	response.JSON(c, http.StatusOK, video, "Video details updated successfully")
}

// DeleteVideo godoc
// @Summary      Delete a video
// @Description  Delete a video and its stored files. Owner only.
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        videoId path string true "Video ID"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      403  {object}  response.ErrorEnvelope
// @Failure      404  {object}  response.ErrorEnvelope
// @Router       /videos/{videoId} [delete]
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	if err := h.videoUseCase.DeleteVideo(c.Request.Context(), userID, c.Param("videoId")); err != nil {
		h.fail(c, "delete video", err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{}, "Video deleted successfully")
}

// TogglePublishStatus godoc
// @Summary      Toggle publish status
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        videoId path string true "Video ID"
// @Success      200  {object}  response.Envelope{data=entity.Video}
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      403  {object}  response.ErrorEnvelope
// @Failure      404  {object}  response.ErrorEnvelope
// @Failure      409  {object}  response.ErrorEnvelope
// @Router       /videos/toggle/publish/{videoId} [patch]
func (h *VideoHandler) TogglePublishStatus(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	video, err := h.videoUseCase.TogglePublishStatus(c.Request.Context(), userID, c.Param("videoId"))
	if err != nil {
		h.fail(c, "toggle publish status", err)
		return
	}

	response.JSON(c, http.StatusOK, video, "Video Status Changed Successfully")
}

// saveUpload writes the multipart file named field to the upload directory.
// It returns an empty path when the request carries no such file, and a
// validation error when the multipart body cannot be read.
func (h *VideoHandler) saveUpload(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", apperror.Validation("Invalid multipart body")
	}

	path := filepath.Join(h.uploadDir, uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", apperror.Internal("failed to store upload", err)
	}
	return path, nil
}

func (h *VideoHandler) removeUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("Failed to remove temp upload %s: %v", path, err)
	}
}

func (h *VideoHandler) fail(c *gin.Context, action string, err error) {
	if apperror.HTTPStatus(err) >= http.StatusInternalServerError {
		h.logger.Error("Failed to %s: %v", action, err)
	}
	response.Error(c, err)
}
