// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListPublished(ctx context.Context, limit int) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, author string) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	PublishDue(ctx context.Context, now time.Time) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("Post ID already in use")
		}
		return err
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return &post, nil
}

// ListPublished returns only published posts, newest first. The status
// filter is the public visibility boundary; callers need no further check.
func (r *postRepository) ListPublished(ctx context.Context, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.db.WithContext(ctx).
		Where("status = ?", models.PostStatusPublished).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByAuthor returns every post by the author regardless of status.
// Requester-identity policy belongs to the caller; pushing it into this
// query would conflate "what exists" with "what is visible".
func (r *postRepository) ListByAuthor(ctx context.Context, author string) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("author = ?", author).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// PublishDue promotes every scheduled post whose due time has arrived in a
// single bulk update. All rows promoted by one call share the same
// published_at instant, the one used in the selection predicate.
// ScheduledAt is retained as a record of original intent. The predicate is
// also the concurrency guard: a post edited out of "scheduled" between
// ticks simply no longer matches.
func (r *postRepository) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("status = ? AND scheduled_at <= ?", models.PostStatusScheduled, now).
		Updates(map[string]interface{}{
			"status":       models.PostStatusPublished,
			"published_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
