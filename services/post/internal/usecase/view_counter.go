package usecase

import (
	"context"

	"finsight/pkg/config"
	"finsight/pkg/logger"
	"finsight/services/post/internal/repo/persistent"
)

// ViewCounter bumps a post's view count once per detail read.
//
// In read-write mode it reads the current value and writes value+1 with no
// guard, so two concurrent bumps may collapse into one. Atomic mode issues a
// single "views = views + 1" statement instead.
type ViewCounter struct {
	postRepo persistent.PostRepository
	mode     string
	logger   *logger.Logger
}

func NewViewCounter(postRepo persistent.PostRepository, mode string, logger *logger.Logger) *ViewCounter {
	if mode != config.ViewCounterAtomic {
		mode = config.ViewCounterReadWrite
	}
	return &ViewCounter{postRepo: postRepo, mode: mode, logger: logger}
}

func (v *ViewCounter) Mode() string {
	return v.mode
}

// Bump never fails from the caller's point of view; problems are logged.
func (v *ViewCounter) Bump(ctx context.Context, slug string) {
	if v.mode == config.ViewCounterAtomic {
		if err := v.postRepo.IncrementViews(ctx, slug); err != nil {
			v.logger.Warn("[VIEWS] Failed to increment views for slug=%s: %v", slug, err)
		}
		return
	}

	current, err := v.postRepo.GetViews(ctx, slug)
	if err != nil {
		v.logger.Warn("[VIEWS] Failed to read views for slug=%s, assuming 0: %v", slug, err)
		current = 0
	}

	if err := v.postRepo.SetViews(ctx, slug, current+1); err != nil {
		v.logger.Warn("[VIEWS] Failed to write views for slug=%s: %v", slug, err)
	}
}
