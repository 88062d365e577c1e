// Package seed provides demo data generation for development environments.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumAuthors int
	NumPosts   int
	// Clean truncates the seeded tables first.
	Clean bool
}

var categories = []string{
	"engineering", "design", "essays", "tutorials", "notes", "reviews",
}

var tagPool = []string{
	"go", "databases", "web", "testing", "writing", "tooling",
	"performance", "architecture", "career", "opinion",
}

// DemoPassword is the password every seeded author gets.
const DemoPassword = "demo-password-123"

// Run populates the database with demo authors and posts spread across all
// lifecycle states, including a few archived copies.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumAuthors <= 0 {
		opts.NumAuthors = 5
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 40
	}

	if opts.Clean {
		for _, table := range []string{"archived_posts", "posts", "users"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("cleaning %s: %w", table, err)
			}
		}
	}

	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return err
	}
	hashStr := string(hash)

	users := make([]*models.User, 0, opts.NumAuthors)
	for i := 0; i < opts.NumAuthors; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i)
		user := &models.User{
			Username:     username,
			Email:        fmt.Sprintf("%s@example.com", username),
			PasswordHash: &hashStr,
			AvatarURL:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("seeding user %s: %w", username, err)
		}
		users = append(users, user)
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := users[r.Intn(len(users))]
		post := buildPost(r, author)
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("seeding post %d: %w", i, err)
		}

		// A slice of drafts ends up archived, so the archive browsing and
		// restore flows have data to work with out of the box.
		if post.Status == models.PostStatusDraft && r.Intn(4) == 0 {
			archived := models.NewArchivedPost(post, author.Username, time.Now().UTC())
			archived.UID = uuid.NewString()
			if err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(archived).Error; err != nil {
					return err
				}
				return tx.Delete(&models.Post{}, post.ID).Error
			}); err != nil {
				return fmt.Errorf("archiving seeded post %d: %w", post.ID, err)
			}
		}
	}

	return nil
}

func buildPost(r *rand.Rand, author *models.User) *models.Post {
	content := markdownBody(r)
	post := &models.Post{
		Title:        strings.TrimSuffix(gofakeit.Sentence(r.Intn(5)+3), "."),
		Content:      content,
		Excerpt:      gofakeit.Sentence(12),
		Category:     categories[r.Intn(len(categories))],
		Tags:         pickTags(r),
		Author:       author.Username,
		AuthorAvatar: author.AvatarURL,
		ReadTime:     fmt.Sprintf("%d min read", r.Intn(12)+1),
	}

	createdAt := time.Now().Add(-time.Duration(r.Intn(90*24)) * time.Hour)
	post.CreatedAt = createdAt

	switch r.Intn(5) {
	case 0:
		post.Status = models.PostStatusDraft
	case 1:
		post.Status = models.PostStatusScheduled
		due := time.Now().Add(time.Duration(r.Intn(7*24)+1) * time.Hour)
		post.ScheduledAt = &due
	default:
		post.Status = models.PostStatusPublished
		publishedAt := createdAt.Add(time.Duration(r.Intn(48)) * time.Hour)
		post.PublishedAt = &publishedAt
		post.CoverImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/1080/566", gofakeit.UUID())
	}

	return post
}

func markdownBody(r *rand.Rand) string {
	var b strings.Builder
	paragraphs := r.Intn(4) + 2
	for i := 0; i < paragraphs; i++ {
		if i > 0 && r.Intn(3) == 0 {
			fmt.Fprintf(&b, "## %s\n\n", strings.TrimSuffix(gofakeit.Sentence(4), "."))
		}
		b.WriteString(gofakeit.Paragraph(1, 3, 12, " "))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func pickTags(r *rand.Rand) []string {
	n := r.Intn(4) + 1
	picked := make([]string, 0, n)
	seen := map[string]struct{}{}
	for len(picked) < n {
		tag := tagPool[r.Intn(len(tagPool))]
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		picked = append(picked, tag)
	}
	return picked
}
