package http

import (
	"net/http"

	"finsight/pkg/logger"
	"finsight/pkg/middleware"
	"finsight/services/post/internal/entity"
	"finsight/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

const maxCoverSize = 5 << 20

type AdminHandler struct {
	adminUseCase usecase.AdminUseCase
	logger       *logger.Logger
}

func NewAdminHandler(adminUseCase usecase.AdminUseCase, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
		logger:       logger,
	}
}

// PostRequest is the editable shape of a post. reading_time and author_id
// are accepted for compatibility with older clients and then ignored.
type PostRequest struct {
	Title       string   `json:"title" binding:"required"`
	Slug        string   `json:"slug" binding:"required"`
	Excerpt     string   `json:"excerpt" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	Tags        []string `json:"tags"`
	CoverImage  string   `json:"cover_image"`
	VideoURL    string   `json:"video_url"`
	Date        string   `json:"date"`
	ReadingTime int      `json:"reading_time"`
	AuthorID    string   `json:"author_id"`
}

func (r PostRequest) toDraft() entity.Draft {
	return entity.Draft{
		Title:       r.Title,
		Slug:        r.Slug,
		Excerpt:     r.Excerpt,
		Content:     r.Content,
		Tags:        r.Tags,
		CoverImage:  r.CoverImage,
		VideoURL:    r.VideoURL,
		Date:        r.Date,
		ReadingTime: r.ReadingTime,
		AuthorID:    r.AuthorID,
	}
}

// Dashboard godoc
// @Summary      Admin dashboard
// @Description  Stats and every post for the admin overview
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usecase.Dashboard
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.adminUseCase.Dashboard(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Reading time, author and default date are derived on the server
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        post  body      PostRequest  true  "Post"
// @Success      201   {object}  PostResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /admin/posts [post]
func (h *AdminHandler) CreatePost(c *gin.Context) {
	var req PostRequest
	if err := bindStrictJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.adminUseCase.Create(c.Request.Context(), middleware.SessionFrom(c), req.toDraft())
	if err != nil {
		h.logger.Warn("Failed to create post slug=%s: %v", req.Slug, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPostResponse(post))
}

// UpdatePost godoc
// @Summary      Update a post
// @Description  Replaces all editable fields of the post identified by slug
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path      string       true  "Current slug"
// @Param        post  body      PostRequest  true  "Post"
// @Success      200   {object}  PostResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /admin/posts/{slug} [put]
func (h *AdminHandler) UpdatePost(c *gin.Context) {
	var req PostRequest
	if err := bindStrictJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slug := c.Param("slug")
	post, err := h.adminUseCase.Update(c.Request.Context(), middleware.SessionFrom(c), slug, req.toDraft())
	if err != nil {
		h.logger.Warn("Failed to update post slug=%s: %v", slug, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPostResponse(post))
}

// DeletePost godoc
// @Summary      Delete a post
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path      string  true  "Post slug"
// @Success      200   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /admin/posts/{slug} [delete]
func (h *AdminHandler) DeletePost(c *gin.Context) {
	slug := c.Param("slug")
	if err := h.adminUseCase.Delete(c.Request.Context(), middleware.SessionFrom(c), slug); err != nil {
		h.logger.Warn("Failed to delete post slug=%s: %v", slug, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// UploadCover godoc
// @Summary      Upload a cover image
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Image (jpg/png/webp, up to 5MB)"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /admin/media/cover [post]
func (h *AdminHandler) UploadCover(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	if file.Size > maxCoverSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image must be 5MB or smaller"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer src.Close()

	url, err := h.adminUseCase.UploadCover(c.Request.Context(), middleware.SessionFrom(c), file.Filename, src, file.Header.Get("Content-Type"))
	if err != nil {
		h.logger.Error("Failed to upload cover: %v", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
