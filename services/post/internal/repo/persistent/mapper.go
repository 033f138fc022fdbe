package persistent

import (
	"time"

	"finsight/pkg/models"
	"finsight/services/post/internal/entity"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

func ToPostEntity(m *models.Post) *entity.Post {
	if m == nil {
		return nil
	}

	tags := make([]string, len(m.Tags))
	copy(tags, m.Tags)

	post := &entity.Post{
		ID:          m.ID,
		Slug:        m.Slug,
		Title:       m.Title,
		Excerpt:     m.Excerpt,
		Content:     m.Content,
		Tags:        tags,
		CoverImage:  m.CoverImage,
		VideoURL:    m.VideoURL,
		ReadingTime: m.ReadingTime,
		Views:       m.Views,
		AuthorID:    m.AuthorID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	if d := time.Time(m.Date); !d.IsZero() {
		post.Date = d.Format(entity.DateLayout)
	}

	return post
}

// ToPostModel expects e.Date to be empty or already validated.
func ToPostModel(e *entity.Post) *models.Post {
	if e == nil {
		return nil
	}

	tags := pq.StringArray(e.Tags)
	if tags == nil {
		tags = pq.StringArray{}
	}

	post := &models.Post{
		ID:          e.ID,
		Slug:        e.Slug,
		Title:       e.Title,
		Excerpt:     e.Excerpt,
		Content:     e.Content,
		Tags:        tags,
		CoverImage:  e.CoverImage,
		VideoURL:    e.VideoURL,
		ReadingTime: e.ReadingTime,
		Views:       e.Views,
		AuthorID:    e.AuthorID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}

	if d, err := time.Parse(entity.DateLayout, e.Date); err == nil {
		post.Date = datatypes.Date(d)
	}

	return post
}
