package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"finsight/pkg/logger"
	"finsight/pkg/queue"
	"finsight/pkg/readingtime"
	"finsight/pkg/session"
	"finsight/services/post/internal/browse"
	"finsight/services/post/internal/entity"
	"finsight/services/post/internal/repo/cache"
	"finsight/services/post/internal/repo/persistent"

	"github.com/google/uuid"
)

// MediaStore is the object storage used for cover images.
type MediaStore interface {
	UploadFile(key string, file io.Reader, contentType string) (string, error)
}

type EventPublisher interface {
	PublishPostEvent(ctx context.Context, event queue.PostEvent) error
}

type Dashboard struct {
	Stats browse.Stats     `json:"stats"`
	Posts []*entity.Post   `json:"posts"`
	Owner *session.Session `json:"session"`
}

type AdminUseCase interface {
	Create(ctx context.Context, s *session.Session, draft entity.Draft) (*entity.Post, error)
	Update(ctx context.Context, s *session.Session, slug string, draft entity.Draft) (*entity.Post, error)
	Delete(ctx context.Context, s *session.Session, slug string) error
	Dashboard(ctx context.Context, s *session.Session) (*Dashboard, error)
	UploadCover(ctx context.Context, s *session.Session, filename string, file io.Reader, contentType string) (string, error)
	Flush(ctx context.Context) error
}

type adminUseCase struct {
	postRepo  persistent.PostRepository
	listCache cache.PostListCache
	media     MediaStore
	events    EventPublisher
	logger    *logger.Logger
	now       func() time.Time
	inflight  sync.WaitGroup
}

// NewAdminUseCase wires the admin write path. listCache, media and events
// may be nil; the matching feature is then skipped or reported unavailable.
func NewAdminUseCase(
	postRepo persistent.PostRepository,
	listCache cache.PostListCache,
	media MediaStore,
	events EventPublisher,
	logger *logger.Logger,
) AdminUseCase {
	return &adminUseCase{
		postRepo:  postRepo,
		listCache: listCache,
		media:     media,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *adminUseCase) Create(ctx context.Context, s *session.Session, draft entity.Draft) (*entity.Post, error) {
	post, err := uc.buildPost(s, draft)
	if err != nil {
		return nil, err
	}

	if err := uc.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, entity.ErrSlugTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	uc.afterWrite(ctx, queue.PostCreated, post)
	return post, nil
}

func (uc *adminUseCase) Update(ctx context.Context, s *session.Session, slug string, draft entity.Draft) (*entity.Post, error) {
	post, err := uc.buildPost(s, draft)
	if err != nil {
		return nil, err
	}

	if err := uc.postRepo.UpdateBySlug(ctx, slug, post); err != nil {
		if errors.Is(err, entity.ErrSlugTaken) || errors.Is(err, entity.ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	uc.afterWrite(ctx, queue.PostUpdated, post)

	updated, err := uc.postRepo.GetBySlug(ctx, post.Slug)
	if err != nil {
		uc.logger.Warn("Updated post slug=%s could not be re-read: %v", post.Slug, err)
		return post, nil
	}
	return updated, nil
}

func (uc *adminUseCase) Delete(ctx context.Context, s *session.Session, slug string) error {
	if s == nil {
		return entity.ErrNoSession
	}

	if err := uc.postRepo.DeleteBySlug(ctx, slug); err != nil {
		return err
	}

	uc.afterWrite(ctx, queue.PostDeleted, &entity.Post{Slug: slug, AuthorID: s.UserID})
	return nil
}

func (uc *adminUseCase) Dashboard(ctx context.Context, s *session.Session) (*Dashboard, error) {
	if s == nil {
		return nil, entity.ErrNoSession
	}

	posts, err := uc.postRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return &Dashboard{
		Stats: browse.Summarize(posts),
		Posts: posts,
		Owner: s,
	}, nil
}

func (uc *adminUseCase) UploadCover(ctx context.Context, s *session.Session, filename string, file io.Reader, contentType string) (string, error) {
	if s == nil {
		return "", entity.ErrNoSession
	}
	if uc.media == nil {
		return "", entity.ErrNoMediaStore
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w, got %s", entity.ErrNotAnImage, contentType)
	}

	key := fmt.Sprintf("covers/%s/%s%s", s.UserID, uuid.New().String(), strings.ToLower(filepath.Ext(filename)))
	url, err := uc.media.UploadFile(key, file, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload cover: %w", err)
	}

	uc.logger.Info("Uploaded cover image key=%s for user=%s", key, s.UserID)
	return url, nil
}

// buildPost validates a draft and derives the persisted shape. It runs
// before any storage call, so a rejected draft never reaches the database.
func (uc *adminUseCase) buildPost(s *session.Session, draft entity.Draft) (*entity.Post, error) {
	if s == nil {
		return nil, entity.ErrNoSession
	}

	slug := draft.Slug
	if strings.IndexFunc(slug, unicode.IsSpace) >= 0 {
		return nil, entity.ErrInvalidSlug
	}

	title := strings.TrimSpace(draft.Title)
	excerpt := strings.TrimSpace(draft.Excerpt)
	if title == "" || slug == "" || excerpt == "" || strings.TrimSpace(draft.Content) == "" {
		return nil, entity.ErrMissingField
	}
	if entity.IsReservedSlug(slug) {
		return nil, entity.ErrReservedSlug
	}

	cover := strings.TrimSpace(draft.CoverImage)
	video := strings.TrimSpace(draft.VideoURL)
	if cover != "" && video != "" {
		return nil, entity.ErrMediaConflict
	}

	date := strings.TrimSpace(draft.Date)
	if date == "" {
		date = uc.now().UTC().Format(entity.DateLayout)
	} else if _, err := time.Parse(entity.DateLayout, date); err != nil {
		return nil, entity.ErrInvalidDate
	}

	return &entity.Post{
		Slug:        slug,
		Title:       title,
		Excerpt:     excerpt,
		Content:     draft.Content,
		Tags:        normalizeTags(draft.Tags),
		CoverImage:  cover,
		VideoURL:    video,
		ReadingTime: readingtime.Estimate(draft.Content),
		Date:        date,
		AuthorID:    s.UserID,
	}, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (uc *adminUseCase) afterWrite(ctx context.Context, eventType queue.PostEventType, post *entity.Post) {
	if uc.listCache != nil {
		if err := uc.listCache.Invalidate(ctx); err != nil {
			uc.logger.Warn("[CACHE] Failed to invalidate post list: %v", err)
		}
	}

	if uc.events != nil {
		event := queue.PostEvent{
			Type:       eventType,
			Slug:       post.Slug,
			Title:      post.Title,
			AuthorID:   post.AuthorID,
			OccurredAt: uc.now().UTC(),
		}
		uc.inflight.Add(1)
		go func() {
			defer uc.inflight.Done()
			uc.publishEvent(event)
		}()
	}
}

// Flush blocks until every event publish started so far has finished or
// ctx is done.
func (uc *adminUseCase) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (uc *adminUseCase) publishEvent(event queue.PostEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	uc.logger.Info("[EVENTS] Publishing %s for slug=%s", event.Type, event.Slug)
	if err := uc.events.PublishPostEvent(ctx, event); err != nil {
		uc.logger.Error("[EVENTS] Failed to publish %s for slug=%s: %v", event.Type, event.Slug, err)
	}
}
