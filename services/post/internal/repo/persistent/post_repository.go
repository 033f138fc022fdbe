package persistent

import (
	"context"
	"errors"
	"fmt"

	"finsight/pkg/models"
	"finsight/services/post/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	ListAll(ctx context.Context) ([]*entity.Post, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Post, error)
	GetViews(ctx context.Context, slug string) (int, error)
	SetViews(ctx context.Context, slug string, views int) error
	IncrementViews(ctx context.Context, slug string) error
	Create(ctx context.Context, post *entity.Post) error
	UpdateBySlug(ctx context.Context, slug string, post *entity.Post) error
	DeleteBySlug(ctx context.Context, slug string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) ListAll(ctx context.Context) ([]*entity.Post, error) {
	var postModels []models.Post
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&postModels).Error; err != nil {
		return nil, err
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*entity.Post, error) {
	var postModel models.Post
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&postModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrPostNotFound
		}
		return nil, err
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) GetViews(ctx context.Context, slug string) (int, error) {
	var postModel models.Post
	err := r.db.WithContext(ctx).Select("views").Where("slug = ?", slug).First(&postModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, entity.ErrPostNotFound
		}
		return 0, err
	}
	return postModel.Views, nil
}

// SetViews writes an absolute counter value with no concurrency guard.
func (r *postRepository) SetViews(ctx context.Context, slug string, views int) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug).UpdateColumn("views", views).Error
}

func (r *postRepository) IncrementViews(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug).UpdateColumn("views", clause.Expr{SQL: "views + ?", Vars: []interface{}{1}}).Error
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	postModel := ToPostModel(post)
	if err := r.db.WithContext(ctx).Create(postModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return entity.ErrSlugTaken
		}
		return err
	}

	*post = *ToPostEntity(postModel)
	return nil
}

// UpdateBySlug replaces the editable fields. views, id and created_at are
// never touched by an admin update.
func (r *postRepository) UpdateBySlug(ctx context.Context, slug string, post *entity.Post) error {
	postModel := ToPostModel(post)
	result := r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug).
		Select("slug", "title", "excerpt", "content", "tags", "cover_image", "video_url", "reading_time", "date", "author_id", "updated_at").
		Updates(postModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return entity.ErrSlugTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) DeleteBySlug(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Post{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entity.ErrPostNotFound
	}
	return nil
}
