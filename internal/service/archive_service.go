package service

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// ArchiveService fronts the archival transition with the ownership policy:
// only the author may archive a post, and only the archiver may list or
// restore the copy. The repository performs the atomic two-store move;
// this layer decides who gets to ask for it.
type ArchiveService struct {
	postRepo    repository.PostRepository
	archiveRepo repository.ArchiveRepository
}

// NewArchiveService creates a new archive service
func NewArchiveService(postRepo repository.PostRepository, archiveRepo repository.ArchiveRepository) *ArchiveService {
	return &ArchiveService{postRepo: postRepo, archiveRepo: archiveRepo}
}

// Archive moves the requester's post into the archive. Posts the requester
// cannot see yield the masked NotFound; visible posts owned by someone
// else yield Unauthorized.
func (s *ArchiveService) Archive(ctx context.Context, postID uint, requester string) (*models.ArchivedPost, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !CanView(post, requester) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if post.Author != requester {
		return nil, models.NewUnauthorizedError("You can only archive your own posts")
	}

	archived, err := s.archiveRepo.Archive(ctx, postID, requester, time.Now().UTC())
	if err != nil {
		observability.ArchiveTransitions.WithLabelValues("archive", "error").Inc()
		return nil, err
	}
	observability.ArchiveTransitions.WithLabelValues("archive", "ok").Inc()
	return archived, nil
}

// Restore rebuilds a post from the requester's archive copy. Copies
// archived by someone else are reported as absent, matching the masking
// rule for unpublished posts.
func (s *ArchiveService) Restore(ctx context.Context, uid, requester string) (*models.Post, error) {
	archived, err := s.archiveRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if archived.ArchivedBy != requester {
		return nil, models.NewNotFoundError("Archived post", uid)
	}

	post, err := s.archiveRepo.Restore(ctx, uid, time.Now().UTC())
	if err != nil {
		observability.ArchiveTransitions.WithLabelValues("restore", "error").Inc()
		return nil, err
	}
	observability.ArchiveTransitions.WithLabelValues("restore", "ok").Inc()
	return post, nil
}

// ListArchived returns the requester's archived posts, most recent first.
func (s *ArchiveService) ListArchived(ctx context.Context, requester string) ([]*models.ArchivedPost, error) {
	return s.archiveRepo.ListByActor(ctx, requester)
}
