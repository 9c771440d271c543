// Package storage keeps uploaded media on the local filesystem.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxImagePixels bounds the decoded size an upload may claim.
const MaxImagePixels = 40_000_000

var ErrNotAnImage = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")

// extensions maps a decoded format to the extensions accepted for it. The
// first entry is used when the uploaded name carries none of them.
var ErrImageTooLarge = fmt.Errorf("image dimensions exceed %d pixels", MaxImagePixels)

var extensions = map[string][]string{
	"jpeg": {".jpg", ".jpeg"},
	"png":  {".png"},
	"gif":  {".gif"},
	"webp": {".webp"},
	"bmp":  {".bmp"},
}

type Media struct {
	root    string
	baseURL string
}

func NewMedia(root, baseURL string) *Media {
	return &Media{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (m *Media) Root() string { return m.root }

// DecodeImage checks that data is a complete raster image and returns its
// format name. Dimensions are read from the header before any pixels are
// allocated.
func DecodeImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNotAnImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrNotAnImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", ErrNotAnImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return "", ErrImageTooLarge
	}

	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", ErrNotAnImage
	}
	return format, nil
}

// ImageName builds "<dir>/<uuid><ext>". The original extension is kept
// when it matches the decoded format.
func ImageName(dir, original, format string) string {
	allowed := extensions[format]
	ext := strings.ToLower(filepath.Ext(original))

	keep := false
	for _, a := range allowed {
		if ext == a {
			keep = true
			break
		}
	}
	if !keep {
		ext = ""
		if len(allowed) > 0 {
			ext = allowed[0]
		}
	}

	return path.Join(dir, uuid.NewString()+ext)
}

// SaveImage validates data and writes it under dir with a generated name.
// Nothing is written when validation fails.
func (m *Media) SaveImage(dir, original string, data []byte) (string, error) {
	format, err := DecodeImage(data)
	if err != nil {
		return "", err
	}

	name := ImageName(dir, original, format)
	full := m.path(name)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("failed to close media file: %w", err)
	}

	return name, nil
}

func (m *Media) Delete(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(m.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (m *Media) Exists(name string) bool {
	_, err := os.Stat(m.path(name))
	return err == nil
}

// URL returns the public URL for a stored name, or nil for none.
func (m *Media) URL(name string) *string {
	if name == "" {
		return nil
	}
	u := m.baseURL + "/" + name
	return &u
}

func (m *Media) path(name string) string {
	return filepath.Join(m.root, filepath.FromSlash(path.Clean("/"+name)))
}
