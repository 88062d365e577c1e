package server

import (
	"fmt"
	"io"

	"inkwell/internal/featureflags"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/images
func (s *Server) UploadImage(c *fiber.Ctx) error {
	ctx := c.Context()

	if !s.featureFlags.Enabled(featureflags.FlagImageUploads, requester(c), true) {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("Image uploads are temporarily disabled"))
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("An 'image' file field is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	img, err := s.imageService.Upload(ctx, service.UploadImageInput{
		Username:    requester(c),
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return respondError(c, err)
	}

	urls := make(map[string]string, len(img.Variants))
	for i := range img.Variants {
		v := &img.Variants[i]
		urls[fmt.Sprintf("%d_%s", v.SizePx, v.Format)] = v.URL(img.Hash)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"image": img,
		"urls":  urls,
	})
}

// ServeImage handles GET /media/i/:hash/:file
func (s *Server) ServeImage(c *fiber.Ctx) error {
	ctx := c.Context()

	path, err := s.imageService.ResolveForServing(ctx, c.Params("hash"), c.Params("file"))
	if err != nil {
		return respondError(c, err)
	}

	// Variants are immutable: the hash changes when the content does.
	c.Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.SendFile(path)
}
