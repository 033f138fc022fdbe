package http

import (
	"net/http"
	"strconv"

	"finsight/pkg/logger"
	"finsight/services/post/internal/entity"
	"finsight/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

// maxPages bounds how many "load more" steps a single listing request may ask for.
const maxPages = 100

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

type PostResponse struct {
	*entity.Post
	VideoEmbedURL string `json:"video_embed_url,omitempty"`
}

func toPostResponse(post *entity.Post) PostResponse {
	return PostResponse{Post: post, VideoEmbedURL: post.VideoEmbedURL()}
}

// ListPosts godoc
// @Summary      List posts
// @Description  Search, filter by tag and page through all posts. Each page adds 6 posts to the visible slice.
// @Tags         posts
// @Produce      json
// @Param        q      query string false "Free-text search over title, excerpt and tags"
// @Param        tag    query string false "Exact tag filter"
// @Param        pages  query int    false "Number of pages to reveal" default(1)
// @Success      200  {object}  usecase.BrowseResult
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	pages, err := strconv.Atoi(c.DefaultQuery("pages", "1"))
	if err != nil || pages < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pages must be a positive integer"})
		return
	}
	if pages > maxPages {
		pages = maxPages
	}

	result, err := h.postUseCase.Browse(c.Request.Context(), c.Query("q"), c.Query("tag"), pages)
	if err != nil {
		h.logger.Error("Failed to list posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// FeaturedPosts godoc
// @Summary      Featured posts
// @Description  The most recent posts, for the home page
// @Tags         posts
// @Produce      json
// @Param        limit  query int false "How many posts" default(6)
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /posts/featured [get]
func (h *PostHandler) FeaturedPosts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(usecase.FeaturedCount)))
	if err != nil || limit < 1 {
		limit = usecase.FeaturedCount
	}

	posts, err := h.postUseCase.Featured(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to load featured posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}

	response := make([]PostResponse, len(posts))
	for i, post := range posts {
		response[i] = toPostResponse(post)
	}
	c.JSON(http.StatusOK, gin.H{"posts": response})
}

// GetPost godoc
// @Summary      Get post by slug
// @Description  Increments the view count, then returns the post
// @Tags         posts
// @Produce      json
// @Param        slug  path string true "Post slug"
// @Success      200  {object}  PostResponse
// @Failure      404  {object}  map[string]string
// @Router       /posts/{slug} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postUseCase.GetPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPostResponse(post))
}
