package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"finsight/pkg/logger"
	"finsight/pkg/middleware"
	"finsight/pkg/session"
	"finsight/services/post/internal/browse"
	"finsight/services/post/internal/entity"
	"finsight/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostUseCase is a mock implementation of PostUseCase
type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) ListPosts(ctx context.Context) ([]*entity.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) Browse(ctx context.Context, query, tag string, pages int) (*usecase.BrowseResult, error) {
	args := m.Called(ctx, query, tag, pages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.BrowseResult), args.Error(1)
}

func (m *MockPostUseCase) Featured(ctx context.Context, n int) ([]*entity.Post, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) GetPost(ctx context.Context, slug string) (*entity.Post, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

var _ usecase.PostUseCase = (*MockPostUseCase)(nil)

// MockAdminUseCase is a mock implementation of AdminUseCase
type MockAdminUseCase struct {
	mock.Mock
}

func (m *MockAdminUseCase) Create(ctx context.Context, s *session.Session, draft entity.Draft) (*entity.Post, error) {
	args := m.Called(ctx, s, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockAdminUseCase) Update(ctx context.Context, s *session.Session, slug string, draft entity.Draft) (*entity.Post, error) {
	args := m.Called(ctx, s, slug, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockAdminUseCase) Delete(ctx context.Context, s *session.Session, slug string) error {
	args := m.Called(ctx, s, slug)
	return args.Error(0)
}

func (m *MockAdminUseCase) Dashboard(ctx context.Context, s *session.Session) (*usecase.Dashboard, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Dashboard), args.Error(1)
}

func (m *MockAdminUseCase) UploadCover(ctx context.Context, s *session.Session, filename string, file io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, s, filename, file, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockAdminUseCase) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ usecase.AdminUseCase = (*MockAdminUseCase)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

var adminSession = &session.Session{ID: "sess-1", UserID: "user-1", Email: "admin@finsight.io"}

func withSession(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s != nil {
			middleware.SetSession(c, s)
		}
		c.Next()
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestListPosts_Success(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts", handler.ListPosts)

	result := &usecase.BrowseResult{
		Posts:         []*entity.Post{{Slug: "tax-101", Title: "Tax strategies 101"}},
		TotalMatching: 1,
		VisibleCount:  12,
		State:         browse.StateResults,
		Tags:          []string{"tax"},
	}
	mockUseCase.On("Browse", mock.Anything, "tax", "tax", 2).Return(result, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts?q=tax&tag=tax&pages=2", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, float64(1), response["total_matching"])
	assert.Equal(t, float64(12), response["visible_count"])
	assert.Equal(t, "results", response["state"])
	mockUseCase.AssertExpectations(t)
}

func TestListPosts_InvalidPages(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts", handler.ListPosts)

	for _, pages := range []string{"0", "-1", "abc"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/posts?pages="+pages, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "pages=%s", pages)
	}
	mockUseCase.AssertNotCalled(t, "Browse", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListPosts_RepositoryFailure(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts", handler.ListPosts)

	mockUseCase.On("Browse", mock.Anything, "", "", 1).Return(nil, errors.New("db down"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestFeaturedPosts(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts/featured", handler.FeaturedPosts)
	router.GET("/posts/:slug", handler.GetPost)

	mockUseCase.On("Featured", mock.Anything, usecase.FeaturedCount).Return([]*entity.Post{{Slug: "a"}, {Slug: "b"}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts/featured", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["posts"], 2)
	mockUseCase.AssertExpectations(t)
	// the static route shadows a post slugged "featured", which is why that slug is reserved
	mockUseCase.AssertNotCalled(t, "GetPost", mock.Anything, "featured")
}

func TestGetPost_Success(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts/:slug", handler.GetPost)

	mockUseCase.On("GetPost", mock.Anything, "tax-101").Return(&entity.Post{
		Slug:     "tax-101",
		Views:    11,
		VideoURL: "https://www.youtube.com/watch?v=abc123",
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts/tax-101", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, "tax-101", response["slug"])
	assert.Equal(t, float64(11), response["views"])
	assert.Equal(t, "https://www.youtube.com/embed/abc123", response["video_embed_url"])
}

func TestGetPost_NotFound(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts/:slug", handler.GetPost)

	mockUseCase.On("GetPost", mock.Anything, "missing").Return(nil, entity.ErrPostNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found", decode(t, w)["error"])
}

func adminRouter(h *AdminHandler, s *session.Session) *gin.Engine {
	router := setupTestRouter()
	admin := router.Group("/admin", withSession(s))
	admin.GET("/dashboard", h.Dashboard)
	admin.POST("/posts", h.CreatePost)
	admin.PUT("/posts/:slug", h.UpdatePost)
	admin.DELETE("/posts/:slug", h.DeletePost)
	admin.POST("/media/cover", h.UploadCover)
	return router
}

const createBody = `{"title":"Tax strategies 101","slug":"tax-101","excerpt":"Basics","content":"one two three","tags":["tax"],"reading_time":99,"author_id":"spoofed"}`

func TestCreatePost_Success(t *testing.T) {
	mockUseCase := new(MockAdminUseCase)
	router := adminRouter(NewAdminHandler(mockUseCase, logger.New()), adminSession)

	expectedDraft := entity.Draft{
		Title:       "Tax strategies 101",
		Slug:        "tax-101",
		Excerpt:     "Basics",
		Content:     "one two three",
		Tags:        []string{"tax"},
		ReadingTime: 99,
		AuthorID:    "spoofed",
	}
	mockUseCase.On("Create", mock.Anything, adminSession, expectedDraft).
		Return(&entity.Post{Slug: "tax-101", ReadingTime: 1, AuthorID: "user-1"}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/admin/posts", bytes.NewBufferString(createBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	response := decode(t, w)
	assert.Equal(t, float64(1), response["reading_time"])
	assert.Equal(t, "user-1", response["author_id"])
	mockUseCase.AssertExpectations(t)
}

func TestCreatePost_RejectsUnknownFields(t *testing.T) {
	mockUseCase := new(MockAdminUseCase)
	router := adminRouter(NewAdminHandler(mockUseCase, logger.New()), adminSession)

	body := `{"title":"t","slug":"s","excerpt":"e","content":"c","views":1000}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/admin/posts", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "views")
	mockUseCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePost_MissingRequired(t *testing.T) {
	mockUseCase := new(MockAdminUseCase)
	router := adminRouter(NewAdminHandler(mockUseCase, logger.New()), adminSession)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/admin/posts", bytes.NewBufferString(`{"title":"only a title"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePost_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"no session", entity.ErrNoSession, http.StatusUnauthorized},
		{"invalid slug", entity.ErrInvalidSlug, http.StatusBadRequest},
		{"reserved slug", entity.ErrReservedSlug, http.StatusBadRequest},
		{"media conflict", entity.ErrMediaConflict, http.StatusBadRequest},
		{"bad date", entity.ErrInvalidDate, http.StatusBadRequest},
		{"slug taken", entity.ErrSlugTaken, http.StatusConflict},
		{"storage", errors.New("failed to create post: disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUseCase := new(MockAdminUseCase)
			router := adminRouter(NewAdminHandler(mockUseCase, logger.New()), adminSession)
			mockUseCase.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/admin/posts", bytes.NewBufferString(createBody))
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.err.Error(), decode(t, w)["error"])
		})
	}
}

func TestCreatePost_WithoutSessionPassesNil(t *testing.T) {
	mockUseCase := new(MockAdminUseCase)
	router := adminRouter(NewAdminHandler(mockUseCase, logger.New()), nil)

	mockUseCase.On("Create", mock.Anything, (*session.Session)(nil), mock.Anything).Return(nil, entity.ErrNoSession)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/admin/posts", bytes.NewBufferString(createBody))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestUpdatePost_Success(t *testing.T) {
	mockUseCase := new(MockAdminUseCase)
	router := adminRouter(NewAdminHandler(mockUseCase, logger.New()), adminSession)

	mockUseCase.On("Update", mock.Anything, adminSession, "old-slug", mock.AnythingOfType("entity.Draft")).
		Return(&entity.Post{Slug: "tax-101"}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/admin/posts/old-slug", bytes.NewBufferString(createBody))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestUpdatePost_NotFound(t *testing.T) {
	mockUseCase := new(MockAdminUseCase)
	router := adminRouter(NewAdminHandler(mockUseCase, logger.New()), adminSession)

	mockUseCase.On("Update", mock.Anything, adminSession, "missing", mock.Anything).Return(nil, entity.ErrPostNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/admin/posts/missing", bytes.NewBufferString(createBody))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePost(t *testing.T) {
	mockUseCase := new(MockAdminUseCase)
	router := adminRouter(NewAdminHandler(mockUseCase, logger.New()), adminSession)

	mockUseCase.On("Delete", mock.Anything, adminSession, "tax-101").Return(nil)
	mockUseCase.On("Delete", mock.Anything, adminSession, "missing").Return(entity.ErrPostNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/admin/posts/tax-101", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Post deleted", decode(t, w)["message"])

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/admin/posts/missing", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboard(t *testing.T) {
	mockUseCase := new(MockAdminUseCase)
	router := adminRouter(NewAdminHandler(mockUseCase, logger.New()), adminSession)

	mockUseCase.On("Dashboard", mock.Anything, adminSession).Return(&usecase.Dashboard{
		Stats: browse.Stats{TotalPosts: 2, TotalViews: 1500, TotalViewsText: "1.5K"},
		Owner: adminSession,
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/dashboard", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["stats"].(map[string]interface{})
	assert.Equal(t, "1.5K", stats["total_views_text"])
}

func multipartCover(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadCover_Success(t *testing.T) {
	mockUseCase := new(MockAdminUseCase)
	router := adminRouter(NewAdminHandler(mockUseCase, logger.New()), adminSession)

	mockUseCase.On("UploadCover", mock.Anything, adminSession, "chart.png", mock.Anything, mock.Anything).
		Return("https://cdn.example.com/covers/user-1/x.png", nil)

	body, contentType := multipartCover(t, "file", "chart.png")
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/admin/media/cover", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "https://cdn.example.com/covers/user-1/x.png", decode(t, w)["url"])
}

func TestUploadCover_MissingFile(t *testing.T) {
	mockUseCase := new(MockAdminUseCase)
	router := adminRouter(NewAdminHandler(mockUseCase, logger.New()), adminSession)

	body, contentType := multipartCover(t, "", "")
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/admin/media/cover", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
