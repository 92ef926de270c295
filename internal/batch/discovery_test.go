package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geuryroustand/nail-design-try-on/internal/testutil"
)

func TestDiscoverTargetImagesFlat(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WritePNG(t, dir, "a.png", testutil.SkinImage(10, 10))
	b := testutil.WritePNG(t, dir, "b.png", testutil.SkinImage(10, 10))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	sub := filepath.Join(dir, "nested")
	testutil.WritePNG(t, sub, "c.png", testutil.SkinImage(10, 10))

	files, err := discoverTargetImages([]string{dir}, false, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)
}

func TestDiscoverTargetImagesRecursive(t *testing.T) {
	dir := t.TempDir()
	testutil.WritePNG(t, dir, "a.png", testutil.SkinImage(10, 10))
	sub := filepath.Join(dir, "nested")
	c := testutil.WritePNG(t, sub, "c.png", testutil.SkinImage(10, 10))

	files, err := discoverTargetImages([]string{dir}, true, nil, nil)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Contains(t, files, c)
}

func TestDiscoverTargetImagesMissingPath(t *testing.T) {
	_, err := discoverTargetImages([]string{"/definitely/not/here"}, false, nil, nil)
	assert.Error(t, err)
}

func TestIncludeFilePatterns(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		include []string
		exclude []string
		want    bool
	}{
		{name: "no patterns includes", path: "a.png", want: true},
		{name: "exclude wins", path: "a.png", include: []string{"*.png"}, exclude: []string{"a.*"}, want: false},
		{name: "include match", path: "hand_01.png", include: []string{"hand_*"}, want: true},
		{name: "include miss", path: "other.png", include: []string{"hand_*"}, want: false},
		{name: "matches on basename", path: "/some/dir/hand_01.png", include: []string{"hand_*"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, includeFile(tt.path, tt.include, tt.exclude))
		})
	}
}
