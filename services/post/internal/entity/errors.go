package entity

import "errors"

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrSlugTaken     = errors.New("a post with this slug already exists")
	ErrNoSession     = errors.New("an authenticated session is required")
	ErrInvalidSlug   = errors.New("slug can't contain spaces, use hyphens or underscores instead")
	ErrReservedSlug  = errors.New("this slug is reserved, choose another one")
	ErrMediaConflict = errors.New("a post can have a cover image or a video, not both")
	ErrInvalidDate   = errors.New("date must be in YYYY-MM-DD format")
	ErrMissingField  = errors.New("title, slug, excerpt and content are required")
	ErrNotAnImage    = errors.New("cover must be an image")
	ErrNoMediaStore  = errors.New("media storage is not configured")
)
