// Package service implements the application's business rules on top of
// the repository layer.
package service

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/content"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

const (
	maxTitleLen   = 300
	maxExcerptLen = 500
	maxContentLen = 100000
	maxTags       = 10
	excerptLen    = 200
)

// PostService owns the post lifecycle rules: creation defaults, the
// visibility gate on reads, ownership on writes, and status transitions.
type PostService struct {
	postRepo repository.PostRepository
}

// CreatePostInput carries a create request. Author and AuthorAvatar come
// from the authenticated identity, never from the request body.
type CreatePostInput struct {
	Author        string
	AuthorAvatar  string
	Title         string
	Excerpt       string
	Content       string
	Category      string
	Tags          []string
	CoverImageURL string
	Status        models.PostStatus
	ScheduledAt   *time.Time
}

// NewPostService creates a new post service
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// CreatePost validates and stores a new post. Status defaults to published;
// a published post gets publishedAt = now, a scheduled post must carry its
// due instant. Read time and excerpt are derived from the content when the
// author does not supply them.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 100000 characters)")
	}
	if len(in.Excerpt) > maxExcerptLen {
		return nil, models.NewValidationError("Excerpt too long (max 500 characters)")
	}
	if len(in.Tags) > maxTags {
		return nil, models.NewValidationError("Too many tags (max 10)")
	}

	status := in.Status
	if status == "" {
		status = models.PostStatusPublished
	}
	if !status.Valid() {
		return nil, models.NewValidationError("Invalid status")
	}

	now := time.Now().UTC()
	post := &models.Post{
		Title:         in.Title,
		Excerpt:       in.Excerpt,
		Content:       in.Content,
		Category:      in.Category,
		Tags:          normalizeTags(in.Tags),
		Author:        in.Author,
		AuthorAvatar:  in.AuthorAvatar,
		CoverImageURL: in.CoverImageURL,
		ReadTime:      content.ReadTime(in.Content),
		Status:        status,
	}
	if post.Excerpt == "" {
		post.Excerpt = content.Excerpt(in.Content, excerptLen)
	}

	switch status {
	case models.PostStatusPublished:
		post.PublishedAt = &now
	case models.PostStatusScheduled:
		if in.ScheduledAt == nil {
			return nil, models.NewValidationError("scheduled_at is required for scheduled posts")
		}
		post.ScheduledAt = in.ScheduledAt
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost loads a post and applies the visibility gate for requester.
// A denied read returns the same NotFound error as a missing id.
func (s *PostService) GetPost(ctx context.Context, id uint, requester string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(post, requester) {
		return nil, models.NewNotFoundError("Post", id)
	}

	html, err := content.RenderHTML(post.Content)
	if err != nil {
		return nil, err
	}
	post.ContentHTML = html
	return post, nil
}

// ListPublished returns public posts, newest first.
func (s *PostService) ListPublished(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.postRepo.ListPublished(ctx, limit)
}

// ListByAuthor returns all of an author's posts regardless of status. The
// store query is deliberately unfiltered by requester; the policy that only
// the author may call this lives here, at the caller. Anyone else gets the
// same NotFound a nonexistent author produces, so the listing cannot be
// used to probe who writes here.
func (s *PostService) ListByAuthor(ctx context.Context, author, requester string) ([]*models.Post, error) {
	if requester == "" || requester != author {
		return nil, models.NewNotFoundError("Author", author)
	}
	return s.postRepo.ListByAuthor(ctx, author)
}

// UpdatePost applies a partial update to the requester's own post.
// Non-authors get the visibility-masked NotFound for posts they cannot
// see, and Unauthorized for posts they can.
func (s *PostService) UpdatePost(ctx context.Context, id uint, requester string, patch models.PostPatch) (*models.Post, error) {
	post, err := s.authorizeWrite(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && !patch.Status.Valid() {
		return nil, models.NewValidationError("Invalid status")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, models.NewValidationError("Title cannot be empty")
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return nil, models.NewValidationError("Content cannot be empty")
	}
	if patch.Tags != nil && len(*patch.Tags) > maxTags {
		return nil, models.NewValidationError("Too many tags (max 10)")
	}

	prevStatus := post.Status
	patch.Apply(post)

	if patch.Content != nil {
		post.ReadTime = content.ReadTime(post.Content)
	}

	now := time.Now().UTC()
	if post.Status != prevStatus {
		switch post.Status {
		case models.PostStatusPublished:
			post.PublishedAt = &now
		case models.PostStatusScheduled:
			if post.ScheduledAt == nil {
				return nil, models.NewValidationError("scheduled_at is required for scheduled posts")
			}
		}
	}
	if post.Status == models.PostStatusScheduled && post.ScheduledAt == nil {
		return nil, models.NewValidationError("scheduled_at is required for scheduled posts")
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost hard-deletes the requester's own post.
func (s *PostService) DeletePost(ctx context.Context, id uint, requester string) error {
	if _, err := s.authorizeWrite(ctx, id, requester); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, id)
}

// authorizeWrite loads the post and checks ownership, masking existence of
// posts the requester cannot see.
func (s *PostService) authorizeWrite(ctx context.Context, id uint, requester string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(post, requester) {
		return nil, models.NewNotFoundError("Post", id)
	}
	if post.Author != requester {
		return nil, models.NewUnauthorizedError("You can only modify your own posts")
	}
	return post, nil
}

func normalizeTags(tags []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
