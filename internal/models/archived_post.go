// Package models contains data structures for the application's domain models.
package models

import "time"

// ArchivedPost is a retired copy of a Post retained for restoration.
//
// It carries its own identity: ID is a fresh database key and UID is the
// public identifier clients use to restore. OriginalID uniquely maps back
// to the Post identifier held at archival time; the unique index on it is
// what makes "never in both stores at once" enforceable at the storage
// layer rather than by convention.
type ArchivedPost struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	UID string `gorm:"type:varchar(36);uniqueIndex;not null" json:"uid"`

	// Content copied verbatim from the post at archival time.
	Title         string     `gorm:"not null" json:"title"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Category      string     `json:"category"`
	Tags          []string   `gorm:"serializer:json" json:"tags"`
	Author        string     `gorm:"not null" json:"author"`
	AuthorAvatar  string     `json:"author_avatar"`
	CoverImageURL string     `json:"cover_image_url"`
	ReadTime      string     `json:"read_time"`
	Status        PostStatus `gorm:"type:varchar(20);not null" json:"status"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`

	// Provenance.
	OriginalID        uint      `gorm:"uniqueIndex;not null" json:"original_id"`
	OriginalCreatedAt time.Time `gorm:"not null" json:"original_created_at"`
	OriginalUpdatedAt time.Time `gorm:"not null" json:"original_updated_at"`
	ArchivedBy        string    `gorm:"not null;index:idx_archived_posts_actor" json:"archived_by"`
	ArchivedAt        time.Time `gorm:"not null;index" json:"archived_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (ArchivedPost) TableName() string {
	return "archived_posts"
}

// ToPost reconstructs the Post this archive entry was taken from. The
// identifier and creation time come from the provenance fields, status is
// forced to draft so restored content is re-reviewed before it is publicly
// visible again, and the archival-only fields are stripped.
func (a *ArchivedPost) ToPost(now time.Time) *Post {
	return &Post{
		ID:            a.OriginalID,
		Title:         a.Title,
		Excerpt:       a.Excerpt,
		Content:       a.Content,
		Category:      a.Category,
		Tags:          a.Tags,
		Author:        a.Author,
		AuthorAvatar:  a.AuthorAvatar,
		CoverImageURL: a.CoverImageURL,
		ReadTime:      a.ReadTime,
		Status:        PostStatusDraft,
		PublishedAt:   a.PublishedAt,
		ScheduledAt:   a.ScheduledAt,
		CreatedAt:     a.OriginalCreatedAt,
		UpdatedAt:     now,
	}
}

// NewArchivedPost copies every post field into a fresh archive record.
// The caller supplies the acting user and the archival instant; the UID is
// assigned by the repository when the record is inserted.
func NewArchivedPost(p *Post, actingUser string, now time.Time) *ArchivedPost {
	return &ArchivedPost{
		Title:             p.Title,
		Excerpt:           p.Excerpt,
		Content:           p.Content,
		Category:          p.Category,
		Tags:              p.Tags,
		Author:            p.Author,
		AuthorAvatar:      p.AuthorAvatar,
		CoverImageURL:     p.CoverImageURL,
		ReadTime:          p.ReadTime,
		Status:            p.Status,
		PublishedAt:       p.PublishedAt,
		ScheduledAt:       p.ScheduledAt,
		OriginalID:        p.ID,
		OriginalCreatedAt: p.CreatedAt,
		OriginalUpdatedAt: p.UpdatedAt,
		ArchivedBy:        actingUser,
		ArchivedAt:        now,
	}
}
