package geometrize

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/esimov/geometrize/utils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, path string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = io.Copy(f, encodeTestPNG(t, halvesBuffer()))
	require.NoError(t, err)
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	return logger
}

func TestExec_File(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.png")
	writeTestImage(t, src)

	p := NewProcessor()
	err := p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-", Logger: discardLogger()})
	require.NoError(t, err)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()

	img, err := decodeImg(f)
	require.NoError(t, err)
	assert.Equal(t, halvesBuffer().Pix, ToBuffer(img).Pix)
}

func TestExec_UnsupportedDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	writeTestImage(t, src)

	p := NewProcessor()
	err := p.Execute(&Ops{Src: src, Dst: filepath.Join(dir, "out.xyz"), PipeName: "-"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = os.Stat(filepath.Join(dir, "out.xyz"))
	assert.True(t, os.IsNotExist(err))
}

func TestExec_Dir(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	writeTestImage(t, filepath.Join(src, "a.png"))
	writeTestImage(t, filepath.Join(src, "b.PNG"))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("skip"), 0644))

	p := NewProcessor()
	err := p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-", Workers: 2, Logger: discardLogger()})
	require.NoError(t, err)

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"a.png", "b.PNG"}, names)
}

func TestExec_DirKeepsSpinner(t *testing.T) {
	src := t.TempDir()
	writeTestImage(t, filepath.Join(src, "a.png"))

	spinner := utils.NewSpinner("geometrize", time.Millisecond, false)
	p := NewProcessor()
	p.Spinner = spinner

	err := p.Execute(&Ops{Src: src, Dst: filepath.Join(t.TempDir(), "out"), PipeName: "-", Logger: discardLogger()})
	require.NoError(t, err)
	assert.Same(t, spinner, p.Spinner)
}

func TestExec_DirReportsFailures(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	writeTestImage(t, filepath.Join(src, "a.png"))
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.png"), []byte("not an image"), 0644))

	p := NewProcessor()
	err := p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-", Logger: discardLogger()})
	assert.Error(t, err)

	_, err = os.Stat(filepath.Join(dst, "a.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dst, "broken.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestExec_WalkDir(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(src, "nested"), 0755))
	for _, name := range []string{"a.jpg", "nested/b.webp", "c.txt", "nested/d"} {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), nil, 0644))
	}

	done := make(chan struct{})
	defer close(done)

	paths, errc := walkDir(done, src, validExtensions)

	var got []string
	for p := range paths {
		rel, err := filepath.Rel(src, p)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
	}
	require.NoError(t, <-errc)

	sort.Strings(got)
	assert.Equal(t, []string{"a.jpg", "nested/b.webp"}, got)
}
