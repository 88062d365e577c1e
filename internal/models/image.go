// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"time"
)

// Image is an uploaded cover image, content-addressed by the SHA-256 of
// the master rendition.
type Image struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Hash       string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"hash"`
	UploadedBy string         `gorm:"index" json:"uploaded_by"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Variants   []ImageVariant `gorm:"foreignKey:ImageID" json:"variants,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Image) TableName() string {
	return "images"
}

// CoverURL returns the variant URL a post references as its cover: the
// largest rendition, preferring WebP at equal size.
func (img *Image) CoverURL() string {
	var best *ImageVariant
	for i := range img.Variants {
		v := &img.Variants[i]
		if best == nil || v.SizePx > best.SizePx ||
			(v.SizePx == best.SizePx && v.Format == "webp" && best.Format != "webp") {
			best = v
		}
	}
	if best == nil {
		return ""
	}
	return best.URL(img.Hash)
}

// ImageVariant is one resized rendition of an Image.
type ImageVariant struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	ImageID uint   `gorm:"not null;index" json:"image_id"`
	SizePx  int    `gorm:"not null" json:"size_px"`
	Format  string `gorm:"type:varchar(8);not null" json:"format"`
	Path    string `gorm:"not null" json:"-"`
}

// TableName specifies the table name for GORM
func (ImageVariant) TableName() string {
	return "image_variants"
}

// URL returns the public path a variant is served from.
func (v *ImageVariant) URL(hash string) string {
	return fmt.Sprintf("/media/i/%s/%d.%s", hash, v.SizePx, v.Format)
}
