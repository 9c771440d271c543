package storage

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	format, err := DecodeImage(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	_, err = DecodeImage([]byte("notanimage"))
	assert.ErrorIs(t, err, ErrNotAnImage)

	_, err = DecodeImage(nil)
	assert.ErrorIs(t, err, ErrNotAnImage)

	truncated := pngBytes(t)
	_, err = DecodeImage(truncated[:len(truncated)/2])
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestImageName(t *testing.T) {
	name := ImageName("uploads/recipe", "Photo.JPEG", "jpeg")
	assert.True(t, strings.HasPrefix(name, "uploads/recipe/"))
	assert.True(t, strings.HasSuffix(name, ".jpeg"))
	assert.NotContains(t, name, "Photo")

	name = ImageName("uploads/recipe", "../../etc/passwd.php", "png")
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotContains(t, name, "..")

	assert.NotEqual(t, ImageName("d", "a.png", "png"), ImageName("d", "a.png", "png"))
}

func TestSaveImage(t *testing.T) {
	root := t.TempDir()
	m := NewMedia(root, "/static/media/")

	name, err := m.SaveImage("uploads/recipe", "dish.png", pngBytes(t))
	require.NoError(t, err)
	assert.True(t, m.Exists(name))
	assert.Equal(t, "/static/media/"+name, *m.URL(name))

	require.NoError(t, m.Delete(name))
	assert.False(t, m.Exists(name))
	assert.NoError(t, m.Delete(name), "deleting a missing file is not an error")
	assert.Nil(t, m.URL(""))
}

func TestSaveImageRejectsWithoutWriting(t *testing.T) {
	root := t.TempDir()
	m := NewMedia(root, "/static/media")

	_, err := m.SaveImage("uploads/recipe", "evil.png", []byte("notanimage"))
	assert.ErrorIs(t, err, ErrNotAnImage)

	_, statErr := os.Stat(filepath.Join(root, "uploads"))
	assert.True(t, os.IsNotExist(statErr))
}

// pngHeader returns a PNG that declares w x h RGBA pixels but carries no
// image data.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	chunk := append([]byte("IHDR"), ihdr...)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecodeImageRejectsOversizedHeader(t *testing.T) {
	data := pngHeader(20000, 20000)
	require.Less(t, len(data), 100)

	_, err := DecodeImage(data)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	root := t.TempDir()
	m := NewMedia(root, "/static/media")
	_, err = m.SaveImage("uploads/recipe", "huge.png", data)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, statErr := os.Stat(filepath.Join(root, "uploads"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDecodeImageHeaderWithinLimitStillNeedsPixels(t *testing.T) {
	_, err := DecodeImage(pngHeader(100, 100))
	assert.ErrorIs(t, err, ErrNotAnImage)
}
