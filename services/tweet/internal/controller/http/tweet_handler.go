package http

import (
	"net/http"

	"mediashare/pkg/apperror"
	"mediashare/pkg/listing"
	"mediashare/pkg/logger"
	"mediashare/pkg/middleware"
	"mediashare/pkg/response"
	"mediashare/services/tweet/internal/usecase"

	"github.com/gin-gonic/gin"
)

type TweetHandler struct {
	tweetUseCase usecase.TweetUseCase
	logger       *logger.Logger
}

func NewTweetHandler(tweetUseCase usecase.TweetUseCase, logger *logger.Logger) *TweetHandler {
	return &TweetHandler{
		tweetUseCase: tweetUseCase,
		logger:       logger,
	}
}

type TweetRequest struct {
	Content string `json:"content" form:"content"`
}

// CreateTweet godoc
// @Summary      Create a tweet
// @Tags         tweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TweetRequest true "Tweet content"
// @Success      201  {object}  response.Envelope{data=entity.Tweet}
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      500  {object}  response.ErrorEnvelope
// @Router       /tweets [post]
func (h *TweetHandler) CreateTweet(c *gin.Context) {
	var req TweetRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, apperror.Validation("Content is required"))
		return
	}

	tweet, err := h.tweetUseCase.CreateTweet(c.Request.Context(), c.GetString(middleware.ContextUserID), usecase.TweetInput{Content: req.Content})
	if err != nil {
		h.fail(c, "create tweet", err)
		return
	}

	response.JSON(c, http.StatusCreated, tweet, "Tweet created successfully")
}

// GetUserTweets godoc
// @Summary      List a user's tweets
// @Description  Paginated tweets of the authenticated user, joined with their profile
// @Tags         tweets
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string true "User ID"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10)
// @Param        query query string false "Case-insensitive search over content"
// @Param        sortBy query string false "Sort field" Enums(content, createdAt, updatedAt)
// @Param        sortType query string false "Sort direction" Enums(asc, desc)
// @Success      200  {object}  response.Envelope{data=listing.Page[entity.TweetView]}
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      403  {object}  response.ErrorEnvelope
// @Failure      404  {object}  response.ErrorEnvelope
// @Router       /tweets/user/{userId} [get]
func (h *TweetHandler) GetUserTweets(c *gin.Context) {
	var params listing.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, apperror.Validation("Invalid query parameters"))
		return
	}

	page, err := h.tweetUseCase.ListUserTweets(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("userId"), params)
	if err != nil {
		h.fail(c, "list tweets", err)
		return
	}

	response.JSON(c, http.StatusOK, page, "Tweets fetched successfully")
}

// GetTweet godoc
// @Summary      Get tweet by ID
// @Tags         tweets
// @Produce      json
// @Security     BearerAuth
// @Param        tweetId path string true "Tweet ID"
// @Success      200  {object}  response.Envelope{data=entity.Tweet}
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      404  {object}  response.ErrorEnvelope
// @Router       /tweets/{tweetId} [get]
func (h *TweetHandler) GetTweet(c *gin.Context) {
	tweet, err := h.tweetUseCase.GetTweet(c.Request.Context(), c.Param("tweetId"))
	if err != nil {
		h.fail(c, "get tweet", err)
		return
	}

	response.JSON(c, http.StatusOK, tweet, "Tweet fetched successfully")
}

// UpdateTweet godoc
// @Summary      Update a tweet
// @Description  Replace the content of a tweet. Owner only.
// @Tags         tweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tweetId path string true "Tweet ID"
// @Param        request body TweetRequest true "New content"
// @Success      200  {object}  response.Envelope{data=entity.Tweet}
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      403  {object}  response.ErrorEnvelope
// @Failure      404  {object}  response.ErrorEnvelope
// @Failure      409  {object}  response.ErrorEnvelope
// @Router       /tweets/{tweetId} [patch]
func (h *TweetHandler) UpdateTweet(c *gin.Context) {
	var req TweetRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, apperror.Validation("Content is required"))
		return
	}

	tweet, err := h.tweetUseCase.UpdateTweet(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("tweetId"), usecase.TweetInput{Content: req.Content})
	if err != nil {
		h.fail(c, "update tweet", err)
		return
	}

	response.JSON(c, http.StatusOK, tweet, "Tweet updated successfully")
}

// DeleteTweet godoc
// @Summary      Delete a tweet
// @Tags         tweets
// @Produce      json
// @Security     BearerAuth
// @Param        tweetId path string true "Tweet ID"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      403  {object}  response.ErrorEnvelope
// @Failure      404  {object}  response.ErrorEnvelope
// @Router       /tweets/{tweetId} [delete]
func (h *TweetHandler) DeleteTweet(c *gin.Context) {
	if err := h.tweetUseCase.DeleteTweet(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("tweetId")); err != nil {
		h.fail(c, "delete tweet", err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{}, "Tweet deleted successfully")
}

func (h *TweetHandler) fail(c *gin.Context, action string, err error) {
	if apperror.HTTPStatus(err) >= http.StatusInternalServerError {
		h.logger.Error("Failed to %s: %v", action, err)
	}
	response.Error(c, err)
}
