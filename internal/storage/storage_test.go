package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePublicID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"versioned delivery url", "https://res.cloudinary.com/demo/image/upload/v1712345678/community_reports/abc123.jpg", "community_reports/abc123"},
		{"no version segment", "https://res.cloudinary.com/demo/image/upload/community_reports/abc123.png", "community_reports/abc123"},
		{"no extension", "https://res.cloudinary.com/demo/image/upload/v1/folder/name", "folder/name"},
		{"not an upload url", "https://example.com/picture.jpg", ""},
		{"local url", LocalURLPrefix + "shot.png", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePublicID(tt.url))
		})
	}
}

func TestLocalFilename(t *testing.T) {
	assert.Equal(t, "shot.png", LocalFilename(LocalURLPrefix+"shot.png"))
	assert.Equal(t, "shot.png", LocalFilename("https://api.scamradar.app"+LocalURLPrefix+"shot.png"))
	assert.Empty(t, LocalFilename("https://cdn.example.com/shot.png"))
}

func TestLocalStorePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	require.NoError(t, err)

	res, err := s.Put([]byte("fake-bytes"), UploadFolder, "evidence.jpg")
	require.NoError(t, err)
	assert.Equal(t, LocalURLPrefix+"evidence.jpg", res.URL)
	assert.Equal(t, "image", res.ResourceType)

	_, err = os.Stat(filepath.Join(dir, "evidence.jpg"))
	require.NoError(t, err)

	require.NoError(t, s.Delete("evidence.jpg"))
	_, err = os.Stat(filepath.Join(dir, "evidence.jpg"))
	assert.True(t, os.IsNotExist(err))

	// Deleting a missing object is not an error.
	assert.NoError(t, s.Delete("evidence.jpg"))
}

func TestLocalStoreAvoidsCollisions(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	first, err := s.Put([]byte("a"), UploadFolder, "clip.mp4")
	require.NoError(t, err)
	second, err := s.Put([]byte("b"), UploadFolder, "clip.mp4")
	require.NoError(t, err)

	assert.Equal(t, LocalURLPrefix+"clip.mp4", first.URL)
	assert.Equal(t, LocalURLPrefix+"clip_1.mp4", second.URL)
	assert.Equal(t, "video", second.ResourceType)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	require.NoError(t, err)

	res, err := s.Put([]byte("x"), UploadFolder, "../../escape.png")
	require.NoError(t, err)
	assert.Equal(t, LocalURLPrefix+"escape.png", res.URL)
	_, err = os.Stat(filepath.Join(dir, "escape.png"))
	assert.NoError(t, err)
}
