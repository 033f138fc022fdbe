package entity

import (
	"net/url"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for Post.Date.
const DateLayout = "2006-01-02"

type Post struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	CoverImage  string    `json:"cover_image,omitempty"`
	VideoURL    string    `json:"video_url,omitempty"`
	ReadingTime int       `json:"reading_time"`
	Views       int       `json:"views"`
	Date        string    `json:"date"`
	AuthorID    string    `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// reservedSlugs collide with static routes under /posts.
var reservedSlugs = map[string]struct{}{
	"featured": {},
}

func IsReservedSlug(slug string) bool {
	_, ok := reservedSlugs[strings.ToLower(slug)]
	return ok
}

// HasTag reports exact membership in the post's tag set.
func (p *Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// VideoEmbedURL converts a YouTube watch URL into its embed form.
// It returns "" when there is no video or no "v" parameter.
func (p *Post) VideoEmbedURL() string {
	if p.VideoURL == "" {
		return ""
	}
	u, err := url.Parse(p.VideoURL)
	if err != nil {
		return ""
	}
	id := strings.TrimSpace(u.Query().Get("v"))
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + url.PathEscape(id)
}

// Draft is the admin-authored shape of a post. ReadingTime and AuthorID
// are accepted from clients but always replaced before persisting.
type Draft struct {
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	Tags        []string
	CoverImage  string
	VideoURL    string
	Date        string
	ReadingTime int
	AuthorID    string
}
