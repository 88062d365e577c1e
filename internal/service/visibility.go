package service

import "inkwell/internal/models"

// CanView decides whether requester may read post. Published posts are
// visible to everyone, including anonymous readers (requester == "").
// Drafts and scheduled posts are visible only to their author.
//
// Callers that deny access must respond with the same NotFound shape as a
// genuinely absent post: distinguishing "doesn't exist" from "exists but
// hidden" would let outsiders enumerate unpublished work.
func CanView(post *models.Post, requester string) bool {
	if post.Status == models.PostStatusPublished {
		return true
	}
	return requester != "" && requester == post.Author
}
