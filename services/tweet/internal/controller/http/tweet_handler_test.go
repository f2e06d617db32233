package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediashare/pkg/apperror"
	"mediashare/pkg/listing"
	"mediashare/pkg/logger"
	"mediashare/pkg/middleware"
	"mediashare/services/tweet/internal/entity"
	"mediashare/services/tweet/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testUserID  = "6f1c2b9e-3f55-4c1e-9d7b-5a0f3f9a1c11"
	testTweetID = "9a7e1d2c-1b3f-4e5d-8c6b-7a8f9e0d1c2b"
)

type MockTweetUseCase struct {
	mock.Mock
}

func (m *MockTweetUseCase) CreateTweet(ctx context.Context, userID string, input usecase.TweetInput) (*entity.Tweet, error) {
	args := m.Called(userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Tweet), args.Error(1)
}

func (m *MockTweetUseCase) GetTweet(ctx context.Context, tweetID string) (*entity.Tweet, error) {
	args := m.Called(tweetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Tweet), args.Error(1)
}

func (m *MockTweetUseCase) ListUserTweets(ctx context.Context, actingUserID, userID string, params listing.Params) (*listing.Page[entity.TweetView], error) {
	args := m.Called(actingUserID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Page[entity.TweetView]), args.Error(1)
}

func (m *MockTweetUseCase) UpdateTweet(ctx context.Context, userID, tweetID string, input usecase.TweetInput) (*entity.Tweet, error) {
	args := m.Called(userID, tweetID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Tweet), args.Error(1)
}

func (m *MockTweetUseCase) DeleteTweet(ctx context.Context, userID, tweetID string) error {
	args := m.Called(userID, tweetID)
	return args.Error(0)
}

var _ usecase.TweetUseCase = (*MockTweetUseCase)(nil)

func setupTestRouter() (*gin.Engine, *MockTweetUseCase) {
	gin.SetMode(gin.TestMode)
	mockUseCase := new(MockTweetUseCase)
	handler := NewTweetHandler(mockUseCase, logger.NewWithWriters(io.Discard, io.Discard))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, testUserID)
		c.Next()
	})
	router.POST("/tweets", handler.CreateTweet)
	router.GET("/tweets/user/:userId", handler.GetUserTweets)
	router.GET("/tweets/:tweetId", handler.GetTweet)
	router.PATCH("/tweets/:tweetId", handler.UpdateTweet)
	router.DELETE("/tweets/:tweetId", handler.DeleteTweet)
	return router, mockUseCase
}

func TestCreateTweet(t *testing.T) {
	router, mockUseCase := setupTestRouter()
	mockUseCase.On("CreateTweet", testUserID, usecase.TweetInput{Content: "hello"}).
		Return(&entity.Tweet{ID: testTweetID, OwnerID: testUserID, Content: "hello", Version: 1}, nil)

	req := httptest.NewRequest(http.MethodPost, "/tweets", strings.NewReader(`{"content":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		StatusCode int          `json:"statusCode"`
		Data       entity.Tweet `json:"data"`
		Message    string       `json:"message"`
		Success    bool         `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusCreated, body.StatusCode)
	assert.True(t, body.Success)
	assert.Equal(t, testUserID, body.Data.OwnerID)
	mockUseCase.AssertExpectations(t)
}

func TestCreateTweet_MalformedBody(t *testing.T) {
	router, mockUseCase := setupTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/tweets", strings.NewReader(`{"content":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "CreateTweet", mock.Anything, mock.Anything)
}

func TestGetUserTweets(t *testing.T) {
	router, mockUseCase := setupTestRouter()
	params := listing.Params{Page: "1", Limit: "2"}
	page := listing.NewPage([]entity.TweetView{{ID: testTweetID, Content: "hi"}}, 1, listing.Build(params))
	mockUseCase.On("ListUserTweets", testUserID, testUserID, params).Return(page, nil)

	req := httptest.NewRequest(http.MethodGet, "/tweets/user/"+testUserID+"?page=1&limit=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalDocs":1`)
	mockUseCase.AssertExpectations(t)
}

func TestGetUserTweets_Forbidden(t *testing.T) {
	router, mockUseCase := setupTestRouter()
	other := "11111111-2222-4333-8444-555555555555"
	mockUseCase.On("ListUserTweets", testUserID, other, listing.Params{}).
		Return(nil, apperror.Forbidden("You do not have permission to view these tweets"))

	req := httptest.NewRequest(http.MethodGet, "/tweets/user/"+other, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateTweet_Conflict(t *testing.T) {
	router, mockUseCase := setupTestRouter()
	mockUseCase.On("UpdateTweet", testUserID, testTweetID, usecase.TweetInput{Content: "new"}).
		Return(nil, apperror.Conflict("Tweet was modified by another request, reload and try again"))

	req := httptest.NewRequest(http.MethodPatch, "/tweets/"+testTweetID, strings.NewReader(`{"content":"new"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestDeleteTweet(t *testing.T) {
	router, mockUseCase := setupTestRouter()
	mockUseCase.On("DeleteTweet", testUserID, testTweetID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/tweets/"+testTweetID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Tweet deleted successfully")
}

func TestGetTweet_InvalidID(t *testing.T) {
	router, mockUseCase := setupTestRouter()
	mockUseCase.On("GetTweet", "abc").Return(nil, apperror.Validation("Tweet Id is not valid"))

	req := httptest.NewRequest(http.MethodGet, "/tweets/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Tweet Id is not valid")
}
