package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskapi/internal/errors"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height, format
}

func TestValidate(t *testing.T) {
	p := NewAvatarProcessor()

	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  error
	}{
		{"png", "me.png", 1000, nil},
		{"jpg upper case", "ME.JPG", 1000, nil},
		{"jpeg at ceiling", "me.jpeg", MaxUploadBytes, nil},
		{"too large", "me.png", 2_000_000, ErrTooLarge},
		{"wrong extension", "me.gif", 1000, ErrNotAnImage},
		{"extension in the middle", "me.png.exe", 1000, ErrNotAnImage},
		{"no file", "", 0, ErrMissingFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Validate(tt.filename, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantErr, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

type explodingReader struct{ t *testing.T }

func (r explodingReader) Read([]byte) (int, error) {
	r.t.Fatal("body must not be read for oversized uploads")
	return 0, nil
}

func TestProcess_RejectsOversizeBeforeReading(t *testing.T) {
	p := NewAvatarProcessor()
	_, err := p.Process(Upload{Filename: "big.png", Size: 2_000_000, Body: explodingReader{t}})
	assert.Equal(t, ErrTooLarge, err)
}

func TestProcess_RejectsBodyLongerThanDeclared(t *testing.T) {
	p := NewAvatarProcessor()
	body := strings.NewReader(strings.Repeat("x", MaxUploadBytes+10))
	_, err := p.Process(Upload{Filename: "liar.png", Size: 10, Body: body})
	assert.Equal(t, ErrTooLarge, err)
}

func TestProcess_TranscodesToCanonicalSquare(t *testing.T) {
	p := NewAvatarProcessor()

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"wide png", "wide.png", encodePNG(t, 600, 300)},
		{"tall png", "tall.png", encodePNG(t, 120, 400)},
		{"tiny png", "tiny.png", encodePNG(t, 10, 10)},
		{"jpeg", "photo.jpg", encodeJPEG(t, 800, 600)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Process(Upload{Filename: tt.filename, Size: int64(len(tt.data)), Body: bytes.NewReader(tt.data)})
			require.NoError(t, err)

			w, h, format := decodeSize(t, out)
			assert.Equal(t, AvatarSize, w)
			assert.Equal(t, AvatarSize, h)
			assert.Equal(t, "png", format)
		})
	}
}

func TestProcess_RejectsUndecodable(t *testing.T) {
	p := NewAvatarProcessor()
	data := []byte("definitely not a png")
	_, err := p.Process(Upload{Filename: "fake.png", Size: int64(len(data)), Body: bytes.NewReader(data)})
	assert.Equal(t, ErrNotAnImage, err)
}

func TestCenterSquare(t *testing.T) {
	assert.Equal(t, image.Rect(150, 0, 450, 300), centerSquare(image.Rect(0, 0, 600, 300)))
	assert.Equal(t, image.Rect(0, 140, 120, 260), centerSquare(image.Rect(0, 0, 120, 400)))
	assert.Equal(t, image.Rect(5, 5, 15, 15), centerSquare(image.Rect(5, 5, 15, 15)))
}
