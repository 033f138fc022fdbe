package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Post struct {
	ID          string         `gorm:"type:uuid;primary_key" json:"id"`
	Slug        string         `gorm:"type:varchar(200);uniqueIndex;not null" json:"slug"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Excerpt     string         `gorm:"type:text" json:"excerpt"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	CoverImage  string         `gorm:"column:cover_image;type:varchar(500)" json:"cover_image"`
	VideoURL    string         `gorm:"column:video_url;type:varchar(500)" json:"video_url"`
	ReadingTime int            `gorm:"column:reading_time;default:1" json:"reading_time"`
	Views       int            `gorm:"default:0" json:"views"`
	Date        datatypes.Date `gorm:"type:date" json:"date"`
	AuthorID    string         `gorm:"column:author_id;type:uuid;index" json:"author_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
