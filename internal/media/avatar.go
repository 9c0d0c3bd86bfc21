// Package media validates uploaded images and transcodes them into the
// canonical avatar format.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	apperrors "taskapi/internal/errors"
)

const (
	// MaxUploadBytes is the largest accepted upload.
	MaxUploadBytes = 1_000_000
	// AvatarSize is the edge length of every stored avatar.
	AvatarSize = 250
	// ContentType is the media type of every stored avatar.
	ContentType = "image/png"
	// maxSourcePixels bounds decoding work for hostile headers.
	maxSourcePixels = 40_000_000
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var (
	ErrTooLarge    = apperrors.Validation("file too large")
	ErrNotAnImage  = apperrors.Validation("please upload an image")
	ErrMissingFile = apperrors.Validation("avatar file is required")
)

// Upload is a single received file.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// AvatarProcessor turns uploads into canonical avatars.
type AvatarProcessor struct {
	maxBytes int64
	size     int
}

// NewAvatarProcessor creates a processor with the standard limits.
func NewAvatarProcessor() *AvatarProcessor {
	return &AvatarProcessor{maxBytes: MaxUploadBytes, size: AvatarSize}
}

// Validate checks the declared size and file extension without reading the body.
func (p *AvatarProcessor) Validate(filename string, size int64) error {
	if filename == "" {
		return ErrMissingFile
	}
	if size > p.maxBytes {
		return ErrTooLarge
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return ErrNotAnImage
	}
	return nil
}

// Process validates upload and returns the transcoded PNG bytes.
func (p *AvatarProcessor) Process(upload Upload) ([]byte, error) {
	if err := p.Validate(upload.Filename, upload.Size); err != nil {
		return nil, err
	}

	// The declared size can lie; never buffer more than the ceiling.
	data, err := io.ReadAll(io.LimitReader(upload.Body, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, ErrTooLarge
	}
	return p.Transcode(data)
}

// Transcode decodes a PNG or JPEG, crops it to a centered square, scales it
// to the avatar size and re-encodes it as PNG.
func (p *AvatarProcessor) Transcode(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotAnImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxSourcePixels {
		return nil, ErrNotAnImage
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotAnImage
	}

	dst := image.NewRGBA(image.Rect(0, 0, p.size, p.size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, centerSquare(src.Bounds()), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

// centerSquare returns the largest square centered in r.
func centerSquare(r image.Rectangle) image.Rectangle {
	w, h := r.Dx(), r.Dy()
	side := min(w, h)
	x0 := r.Min.X + (w-side)/2
	y0 := r.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
