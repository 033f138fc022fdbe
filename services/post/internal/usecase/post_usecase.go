package usecase

import (
	"context"
	"errors"
	"fmt"

	"finsight/pkg/logger"
	"finsight/services/post/internal/browse"
	"finsight/services/post/internal/entity"
	"finsight/services/post/internal/repo/cache"
	"finsight/services/post/internal/repo/persistent"
)

// FeaturedCount is how many posts the home page highlights.
const FeaturedCount = 6

type BrowseResult struct {
	Posts         []*entity.Post `json:"posts"`
	TotalMatching int            `json:"total_matching"`
	VisibleCount  int            `json:"visible_count"`
	HasMore       bool           `json:"has_more"`
	State         browse.State   `json:"state"`
	Tags          []string       `json:"tags"`
	Stats         browse.Stats   `json:"stats"`
}

type PostUseCase interface {
	ListPosts(ctx context.Context) ([]*entity.Post, error)
	Browse(ctx context.Context, query, tag string, pages int) (*BrowseResult, error)
	Featured(ctx context.Context, n int) ([]*entity.Post, error)
	GetPost(ctx context.Context, slug string) (*entity.Post, error)
}

type postUseCase struct {
	postRepo    persistent.PostRepository
	listCache   cache.PostListCache
	viewCounter *ViewCounter
	logger      *logger.Logger
}

// NewPostUseCase wires the public read path. listCache may be nil.
func NewPostUseCase(
	postRepo persistent.PostRepository,
	listCache cache.PostListCache,
	viewCounter *ViewCounter,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:    postRepo,
		listCache:   listCache,
		viewCounter: viewCounter,
		logger:      logger,
	}
}

func (uc *postUseCase) ListPosts(ctx context.Context) ([]*entity.Post, error) {
	if uc.listCache != nil {
		posts, err := uc.listCache.Get(ctx)
		if err == nil {
			return posts, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			uc.logger.Warn("[CACHE] Post list cache read failed: %v", err)
		}
	}

	posts, err := uc.postRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	if uc.listCache != nil {
		if err := uc.listCache.Set(ctx, posts); err != nil {
			uc.logger.Warn("[CACHE] Post list cache write failed: %v", err)
		}
	}

	return posts, nil
}

// Browse filters the full listing and reveals `pages` pages of results.
func (uc *postUseCase) Browse(ctx context.Context, query, tag string, pages int) (*BrowseResult, error) {
	posts, err := uc.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	b := browse.NewBrowser()
	b.Load(posts)
	b.Apply(query, tag)
	for i := 1; i < pages; i++ {
		b.LoadMore()
	}

	return &BrowseResult{
		Posts:         b.Visible(),
		TotalMatching: len(b.Matching()),
		VisibleCount:  b.VisibleCount(),
		HasMore:       b.HasMore(),
		State:         b.State(),
		Tags:          b.Tags(),
		Stats:         b.Stats(),
	}, nil
}

func (uc *postUseCase) Featured(ctx context.Context, n int) ([]*entity.Post, error) {
	posts, err := uc.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	return browse.Featured(posts, n), nil
}

// GetPost bumps the view counter and then fetches the post. The fetch does
// not depend on whether the bump succeeded.
func (uc *postUseCase) GetPost(ctx context.Context, slug string) (*entity.Post, error) {
	uc.viewCounter.Bump(ctx, slug)

	post, err := uc.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, entity.ErrPostNotFound) {
			uc.logger.Error("Failed to fetch post slug=%s: %v", slug, err)
		}
		return nil, entity.ErrPostNotFound
	}
	return post, nil
}
