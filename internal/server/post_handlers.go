package server

import (
	"io"
	"mime/multipart"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	limit := parseLimit(c, 20)

	posts, err := s.postService.ListPublished(ctx, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(ctx, id, requester(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// GetAuthorPosts handles GET /api/posts/author/:author
func (s *Server) GetAuthorPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	author := c.Params("author")

	posts, err := s.postService.ListByAuthor(ctx, author, requester(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts. The body is JSON, or multipart form
// data when the post carries a "cover" file; the cover runs through the
// image pipeline before the post is written, so an image failure aborts
// the whole create.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	username := c.Locals("username").(string)

	var req struct {
		Title         string            `json:"title"`
		Excerpt       string            `json:"excerpt"`
		Content       string            `json:"content"`
		Category      string            `json:"category"`
		Tags          []string          `json:"tags"`
		CoverImageURL string            `json:"cover_image_url"`
		Status        models.PostStatus `json:"status"`
		ScheduledAt   *time.Time        `json:"scheduled_at"`
	}

	uploadedCover := false
	if form, ferr := c.MultipartForm(); ferr == nil {
		req.Title = formValue(form, "title")
		req.Excerpt = formValue(form, "excerpt")
		req.Content = formValue(form, "content")
		req.Category = formValue(form, "category")
		req.Tags = form.Value["tags"]
		req.CoverImageURL = formValue(form, "cover_image_url")
		req.Status = models.PostStatus(formValue(form, "status"))
		if raw := formValue(form, "scheduled_at"); raw != "" {
			due, perr := time.Parse(time.RFC3339, raw)
			if perr != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("scheduled_at must be an RFC 3339 timestamp"))
			}
			req.ScheduledAt = &due
		}

		coverURL, uploaded, cerr := s.uploadCover(c, form)
		if cerr != nil {
			return respondError(c, cerr)
		}
		if uploaded {
			req.CoverImageURL = coverURL
			uploadedCover = true
		}
	} else if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	// A cover supplied by URL must reference an image we actually store.
	if !uploadedCover && req.CoverImageURL != "" {
		if err := s.imageService.VerifyMediaURL(ctx, req.CoverImageURL); err != nil {
			return respondError(c, err)
		}
	}

	// Authorship comes from the token, never the body. The avatar is a
	// point-in-time snapshot of the author's current one.
	avatar := ""
	if user, err := s.userService.GetByID(ctx, userID); err == nil {
		avatar = user.AvatarURL
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		Author:        username,
		AuthorAvatar:  avatar,
		Title:         req.Title,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		Category:      req.Category,
		Tags:          req.Tags,
		CoverImageURL: req.CoverImageURL,
		Status:        req.Status,
		ScheduledAt:   req.ScheduledAt,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id. Accepts the same JSON-or-multipart
// bodies as CreatePost; a multipart "cover" failure aborts the update.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var patch models.PostPatch
	uploadedCover := false
	if form, ferr := c.MultipartForm(); ferr == nil {
		patch, err = patchFromForm(form)
		if err != nil {
			return respondError(c, err)
		}

		coverURL, uploaded, cerr := s.uploadCover(c, form)
		if cerr != nil {
			return respondError(c, cerr)
		}
		if uploaded {
			patch.CoverImageURL = &coverURL
			uploadedCover = true
		}
	} else if err := c.BodyParser(&patch); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if !uploadedCover && patch.CoverImageURL != nil && *patch.CoverImageURL != "" {
		if err := s.imageService.VerifyMediaURL(ctx, *patch.CoverImageURL); err != nil {
			return respondError(c, err)
		}
	}

	post, err := s.postService.UpdatePost(ctx, id, requester(c), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(ctx, id, requester(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// uploadCover runs a multipart "cover" file through the image pipeline and
// returns the stored cover URL. Reports uploaded=false when the form
// carries no cover.
func (s *Server) uploadCover(c *fiber.Ctx, form *multipart.Form) (string, bool, error) {
	files := form.File["cover"]
	if len(files) == 0 {
		return "", false, nil
	}

	file, err := files[0].Open()
	if err != nil {
		return "", false, models.NewInternalError(err)
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", false, models.NewInternalError(err)
	}

	img, err := s.imageService.Upload(c.Context(), service.UploadImageInput{
		Username:    requester(c),
		ContentType: files[0].Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return "", false, err
	}
	return img.CoverURL(), true, nil
}

// patchFromForm builds a PostPatch from multipart fields. Only fields
// present in the form are set, matching the JSON patch semantics.
func patchFromForm(form *multipart.Form) (models.PostPatch, error) {
	var patch models.PostPatch
	if v, ok := formLookup(form, "title"); ok {
		patch.Title = &v
	}
	if v, ok := formLookup(form, "excerpt"); ok {
		patch.Excerpt = &v
	}
	if v, ok := formLookup(form, "content"); ok {
		patch.Content = &v
	}
	if v, ok := formLookup(form, "category"); ok {
		patch.Category = &v
	}
	if tags, ok := form.Value["tags"]; ok {
		patch.Tags = &tags
	}
	if v, ok := formLookup(form, "cover_image_url"); ok {
		patch.CoverImageURL = &v
	}
	if v, ok := formLookup(form, "status"); ok {
		status := models.PostStatus(v)
		patch.Status = &status
	}
	if v, ok := formLookup(form, "scheduled_at"); ok {
		due, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return models.PostPatch{}, models.NewValidationError("scheduled_at must be an RFC 3339 timestamp")
		}
		patch.ScheduledAt = &due
	}
	return patch, nil
}

func formLookup(form *multipart.Form, key string) (string, bool) {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func formValue(form *multipart.Form, key string) string {
	v, _ := formLookup(form, key)
	return v
}
