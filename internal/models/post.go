// Package models contains data structures for the application's domain models.
package models

import "time"

// PostStatus represents the lifecycle state of a blog post.
type PostStatus string

const (
	// PostStatusDraft indicates a post visible only to its author.
	PostStatusDraft PostStatus = "draft"
	// PostStatusPublished indicates a publicly visible post.
	PostStatusPublished PostStatus = "published"
	// PostStatusScheduled indicates a post awaiting automatic publication.
	PostStatusScheduled PostStatus = "scheduled"
)

// Valid reports whether s is one of the known post statuses.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusScheduled:
		return true
	}
	return false
}

// Post represents an active blog entry.
//
// Exactly one of PublishedAt/ScheduledAt is authoritative for the current
// status; the other may hold a stale value from an earlier transition
// (ScheduledAt survives auto-publish as a record of original intent).
// The ID is stable across the post's lifetime and is reclaimed on restore
// from the archive, so there is no soft delete here: deletion is hard by
// contract and archiving is the recoverable path.
type Post struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"not null" json:"title"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	ContentHTML   string     `gorm:"-" json:"content_html,omitempty"`
	Category      string     `gorm:"index" json:"category"`
	Tags          []string   `gorm:"serializer:json" json:"tags"`
	Author        string     `gorm:"not null;index" json:"author"`
	AuthorAvatar  string     `json:"author_avatar"`
	CoverImageURL string     `json:"cover_image_url"`
	ReadTime      string     `json:"read_time"`
	Status        PostStatus `gorm:"type:varchar(20);not null;default:'published';index:idx_posts_status" json:"status"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	ScheduledAt   *time.Time `gorm:"index:idx_posts_due" json:"scheduled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// PostPatch is a partial update with named optional fields. A nil field
// means "leave unchanged"; this replaces dynamic per-request field merging
// so handlers cannot smuggle arbitrary columns into a save.
type PostPatch struct {
	Title         *string     `json:"title"`
	Excerpt       *string     `json:"excerpt"`
	Content       *string     `json:"content"`
	Category      *string     `json:"category"`
	Tags          *[]string   `json:"tags"`
	CoverImageURL *string     `json:"cover_image_url"`
	AuthorAvatar  *string     `json:"author_avatar"`
	Status        *PostStatus `json:"status"`
	ScheduledAt   *time.Time  `json:"scheduled_at"`
}

// Apply merges the patch into p field by field.
func (patch *PostPatch) Apply(p *Post) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Excerpt != nil {
		p.Excerpt = *patch.Excerpt
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.CoverImageURL != nil {
		p.CoverImageURL = *patch.CoverImageURL
	}
	if patch.AuthorAvatar != nil {
		p.AuthorAvatar = *patch.AuthorAvatar
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.ScheduledAt != nil {
		p.ScheduledAt = patch.ScheduledAt
	}
}
