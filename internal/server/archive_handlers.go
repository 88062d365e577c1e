package server

import (
	"github.com/gofiber/fiber/v2"
)

// ArchivePost handles POST /api/posts/archive/:id
func (s *Server) ArchivePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	archived, err := s.archiveService.Archive(ctx, id, requester(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(archived)
}

// RestorePost handles POST /api/posts/restore/:uid
func (s *Server) RestorePost(c *fiber.Ctx) error {
	ctx := c.Context()
	uid := c.Params("uid")

	post, err := s.archiveService.Restore(ctx, uid, requester(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// GetArchivedPosts handles GET /api/posts/archives
func (s *Server) GetArchivedPosts(c *fiber.Ctx) error {
	ctx := c.Context()

	archived, err := s.archiveService.ListArchived(ctx, requester(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(archived)
}
