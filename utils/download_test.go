package utils

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsValidUrl("https://github.com/esimov/geometrize/"))
	assert.False(IsValidUrl("testdata/sample.png"))
	assert.False(IsValidUrl("-"))
	assert.False(IsValidUrl("http://"))
}

func TestUtils_ShouldDetectValidFileType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray16(image.Rect(0, 0, 4, 4))))
	require.NoError(t, f.Close())

	ftype, err := DetectContentType(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ftype)
}

func TestUtils_ShouldDetectNonImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	ftype, err := DetectContentType(path)
	require.NoError(t, err)
	assert.NotContains(t, ftype, "image")
}
