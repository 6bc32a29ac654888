package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bugtrack/internal/cache"
	apperrors "bugtrack/internal/errors"
	"bugtrack/internal/model"
	"bugtrack/internal/repository"
)

const postCacheTTL = 5 * time.Minute

var (
	slugInvalidChars   = regexp.MustCompile(`[^a-z0-9 -]`)
	slugWhitespaceRuns = regexp.MustCompile(`\s+`)
	slugHyphenRuns     = regexp.MustCompile(`-+`)
)

// Slugify derives a URL slug from a title: lowercased, non-alphanumerics
// stripped, whitespace collapsed to single hyphens.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = slugWhitespaceRuns.ReplaceAllString(s, "-")
	s = slugHyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CreatePostInput carries the fields a client may set when creating a post.
type CreatePostInput struct {
	Title     string
	Content   string
	Category  string
	Published bool
}

// UpdatePostInput carries a partial update; nil fields are left unchanged.
type UpdatePostInput struct {
	Title     *string
	Content   *string
	Category  *string
	Published *bool
}

// PostService applies create/read/update/delete semantics to posts, enforcing
// author ownership on every mutation.
type PostService interface {
	Create(ctx context.Context, authorID uuid.UUID, input CreatePostInput) (*model.Post, error)
	List(ctx context.Context, viewerID *uuid.UUID, mine bool) ([]model.Post, error)
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Update(ctx context.Context, userID uuid.UUID, id string, input UpdatePostInput) (*model.Post, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) error
}

type postService struct {
	repo  repository.PostRepository
	cache *cache.Client
}

// NewPostService creates a new post service.
func NewPostService(repo repository.PostRepository, cache *cache.Client) PostService {
	return &postService{
		repo:  repo,
		cache: cache,
	}
}

func (s *postService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("post:%s", id.String())
}

// Create persists a new post owned by authorID. The slug is derived from the
// title before validation so required checks see it.
func (s *postService) Create(ctx context.Context, authorID uuid.UUID, input CreatePostInput) (*model.Post, error) {
	post := &model.Post{
		Title:     input.Title,
		Content:   input.Content,
		Category:  input.Category,
		Slug:      Slugify(input.Title),
		Published: input.Published,
		AuthorID:  authorID,
	}

	if err := validate.Struct(post); err != nil {
		return nil, apperrors.FromValidator(err)
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// List returns posts newest-first. With mine set and a viewer present the
// result is restricted to the viewer's posts; otherwise all posts are returned.
func (s *postService) List(ctx context.Context, viewerID *uuid.UUID, mine bool) ([]model.Post, error) {
	var authorID *uuid.UUID
	if mine && viewerID != nil {
		authorID = viewerID
	}
	posts, err := s.repo.List(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// GetByID retrieves a post with its author resolved, reading through the
// cache. Malformed identifiers are reported distinctly from absent records.
func (s *postService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	postID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrInvalidPostID
	}

	if data, _ := s.cache.Get(ctx, s.cacheKey(postID)); data != nil {
		var cached model.Post
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}

	if payload, err := json.Marshal(post); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(postID), payload, postCacheTTL)
	}
	return post, nil
}

// Update merges the payload into the stored post and persists it. The
// ownership check runs before any field is touched; the slug follows the
// title when it changes.
func (s *postService) Update(ctx context.Context, userID uuid.UUID, id string, input UpdatePostInput) (*model.Post, error) {
	postID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrInvalidPostID
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	if post.AuthorID != userID {
		return nil, apperrors.ErrNotPostAuthor
	}

	if input.Title != nil {
		post.Title = *input.Title
		post.Slug = Slugify(*input.Title)
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	if input.Category != nil {
		post.Category = *input.Category
	}
	if input.Published != nil {
		post.Published = *input.Published
	}

	if err := validate.Struct(post); err != nil {
		return nil, apperrors.FromValidator(err)
	}
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(postID))
	return post, nil
}

// Delete permanently removes a post after the same not-found and ownership
// checks as Update.
func (s *postService) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	postID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.ErrInvalidPostID
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("find post: %w", err)
	}
	if post.AuthorID != userID {
		return apperrors.ErrNotPostAuthor
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(postID))
	return nil
}
