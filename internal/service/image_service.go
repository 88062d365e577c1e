package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	masterMaxSize = 2048
	jpegQuality   = 82
	webpQuality   = 70
)

// Each uploaded image is downscaled into this ladder; sizes larger than
// the source are skipped.
var sizeLadder = []int{256, 640, 1080}

// UploadImageInput carries one multipart upload.
type UploadImageInput struct {
	Username    string
	ContentType string
	Content     []byte
}

// ImageService processes cover image uploads: validate, decode, resize,
// encode as WebP and JPEG, write to disk and record the metadata. Images
// are content-addressed, so re-uploading the same bytes returns the
// existing record instead of duplicating files.
type ImageService struct {
	repo               repository.ImageRepository
	uploadDir          string
	maxUploadSizeBytes int64
}

// NewImageService creates a new image service
func NewImageService(repo repository.ImageRepository, cfg *config.Config) *ImageService {
	return &ImageService{
		repo:               repo,
		uploadDir:          cfg.ImageUploadDir,
		maxUploadSizeBytes: int64(cfg.ImageMaxUploadSizeMB) * 1024 * 1024,
	}
}

// Upload validates and processes one image synchronously. The returned
// record carries the variant paths the handler turns into URLs.
func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (*models.Image, error) {
	if in.Username == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(in.Content)) {
		return nil, models.NewValidationError("Invalid image type")
	}

	start := time.Now()
	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	master := resizeToFit(decoded, masterMaxSize, masterMaxSize)
	masterJPG, err := encodeJPEG(master, jpegQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	hash := contentHash(masterJPG)
	if existing, getErr := s.repo.GetByHash(ctx, hash); getErr == nil {
		return existing, nil
	} else if !models.IsNotFound(getErr) {
		return nil, getErr
	}

	record, written, err := s.buildVariants(master, hash)
	if err != nil {
		cleanupFiles(written)
		return nil, err
	}
	record.UploadedBy = in.Username

	if err := s.repo.Create(ctx, record); err != nil {
		cleanupFiles(written)
		if models.IsConflict(err) {
			// Lost a race with an identical concurrent upload.
			return s.repo.GetByHash(ctx, hash)
		}
		return nil, err
	}

	observability.ImageProcessingDuration.Observe(time.Since(start).Seconds())
	return record, nil
}

// buildVariants encodes the master plus the downscale ladder in both
// formats and writes them under uploadDir/<hash>/.
func (s *ImageService) buildVariants(master image.Image, hash string) (*models.Image, []string, error) {
	b := master.Bounds()
	record := &models.Image{
		Hash:   hash,
		Width:  b.Dx(),
		Height: b.Dy(),
	}

	sizes := append([]int{}, sizeLadder...)
	sizes = append(sizes, b.Dx())

	var written []string
	for _, size := range sizes {
		if b.Dx() < size {
			continue
		}
		resized := resizeToFit(master, size, size)

		for _, format := range []string{"webp", "jpg"} {
			var data []byte
			var err error
			if format == "webp" {
				data, err = encodeWebP(resized, webpQuality)
			} else {
				data, err = encodeJPEG(resized, jpegQuality)
			}
			if err != nil {
				return nil, written, models.NewInternalError(err)
			}

			rel := filepath.ToSlash(filepath.Join(hash, fmt.Sprintf("%d.%s", size, format)))
			abs := filepath.Join(s.uploadDir, rel)
			if err := writeBytesToFile(abs, data); err != nil {
				return nil, written, models.NewInternalError(err)
			}
			written = append(written, abs)

			record.Variants = append(record.Variants, models.ImageVariant{
				SizePx: size,
				Format: format,
				Path:   rel,
			})
		}
	}
	return record, written, nil
}

// ResolveForServing maps a media request to the file on disk. The hash is
// validated as hex before it touches a path, so crafted values cannot
// escape the upload directory.
func (s *ImageService) ResolveForServing(ctx context.Context, hash, file string) (string, error) {
	if !isValidImageHash(hash) {
		return "", models.NewValidationError("Invalid image hash")
	}
	img, err := s.repo.GetByHash(ctx, hash)
	if err != nil {
		return "", err
	}
	for _, v := range img.Variants {
		if filepath.Base(v.Path) == file {
			return filepath.Join(s.uploadDir, v.Path), nil
		}
	}
	return "", models.NewNotFoundError("Image", hash)
}

// VerifyMediaURL checks that url points at a stored variant this instance
// serves. Post writes call this before committing a cover reference, so a
// post can never be stored pointing at an image that does not exist.
func (s *ImageService) VerifyMediaURL(ctx context.Context, url string) error {
	hash, file, ok := parseMediaURL(url)
	if !ok {
		return models.NewValidationError("cover_image_url must be a /media/i/ URL")
	}
	if _, err := s.ResolveForServing(ctx, hash, file); err != nil {
		if models.IsNotFound(err) {
			return models.NewValidationError("cover_image_url does not match an uploaded image")
		}
		return err
	}
	return nil
}

// parseMediaURL splits "/media/i/<hash>/<file>" into its parts.
func parseMediaURL(url string) (hash, file string, ok bool) {
	rest, found := strings.CutPrefix(url, "/media/i/")
	if !found {
		return "", "", false
	}
	hash, file, found = strings.Cut(rest, "/")
	if !found || hash == "" || file == "" || strings.Contains(file, "/") {
		return "", "", false
	}
	return hash, file, true
}

// isValidImageHash checks that the hash is strictly lowercase hex.
func isValidImageHash(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func cleanupFiles(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
