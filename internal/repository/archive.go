package repository

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArchiveRepository moves posts between the active store and the archive.
// Both directions run inside a single database transaction: either the
// insert and the delete both land, or neither is observable.
type ArchiveRepository interface {
	Archive(ctx context.Context, postID uint, actingUser string, now time.Time) (*models.ArchivedPost, error)
	Restore(ctx context.Context, uid string, now time.Time) (*models.Post, error)
	GetByUID(ctx context.Context, uid string) (*models.ArchivedPost, error)
	ListByActor(ctx context.Context, actingUser string) ([]*models.ArchivedPost, error)
	Delete(ctx context.Context, uid string) error
}

type archiveRepository struct {
	db *gorm.DB
}

// NewArchiveRepository creates a new archive repository
func NewArchiveRepository(db *gorm.DB) ArchiveRepository {
	return &archiveRepository{db: db}
}

// Archive copies the post into the archive under a fresh identity and
// deletes it from the active store, atomically.
func (r *archiveRepository) Archive(ctx context.Context, postID uint, actingUser string, now time.Time) (*models.ArchivedPost, error) {
	var archived *models.ArchivedPost

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return err
		}

		archived = models.NewArchivedPost(&post, actingUser, now)
		archived.UID = uuid.NewString()

		if err := tx.Create(archived).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.NewConflictError("Post is already archived")
			}
			return err
		}

		res := tx.Delete(&models.Post{}, postID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Row vanished between the read and the delete; abort so the
			// archive copy is rolled back with it.
			return models.NewNotFoundError("Post", postID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return archived, nil
}

// Restore rebuilds the original post from the archive copy and removes the
// copy, atomically. The rebuilt post reclaims the original identifier and
// creation time and always comes back as a draft.
func (r *archiveRepository) Restore(ctx context.Context, uid string, now time.Time) (*models.Post, error) {
	var post *models.Post

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var archived models.ArchivedPost
		if err := tx.Where("uid = ?", uid).First(&archived).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Archived post", uid)
			}
			return err
		}

		// The original identifier may have been handed to an unrelated post
		// since archival. That is a user-actionable conflict, never a
		// silent overwrite.
		var occupied int64
		if err := tx.Model(&models.Post{}).Where("id = ?", archived.OriginalID).Count(&occupied).Error; err != nil {
			return err
		}
		if occupied > 0 {
			return models.NewConflictError("Original post ID is occupied by another post")
		}

		post = archived.ToPost(now)
		if err := tx.Create(post).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.NewConflictError("Original post ID is occupied by another post")
			}
			return err
		}

		return tx.Delete(&models.ArchivedPost{}, archived.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *archiveRepository) GetByUID(ctx context.Context, uid string) (*models.ArchivedPost, error) {
	var archived models.ArchivedPost
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&archived).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Archived post", uid)
		}
		return nil, err
	}
	return &archived, nil
}

// ListByActor returns the actor's archived posts, most recently archived first.
func (r *archiveRepository) ListByActor(ctx context.Context, actingUser string) ([]*models.ArchivedPost, error) {
	var archived []*models.ArchivedPost
	err := r.db.WithContext(ctx).
		Where("archived_by = ?", actingUser).
		Order("archived_at DESC").
		Find(&archived).Error
	if err != nil {
		return nil, err
	}
	return archived, nil
}

func (r *archiveRepository) Delete(ctx context.Context, uid string) error {
	res := r.db.WithContext(ctx).Where("uid = ?", uid).Delete(&models.ArchivedPost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Archived post", uid)
	}
	return nil
}
