// Package storage abstracts where report media lives. Remote object storage
// is preferred when configured; local disk is the fallback. The stored URL
// encodes which implementation owns the object, and deletion dispatches on
// that shape.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UploadFolder is the remote folder for community report media.
const UploadFolder = "community_reports"

// LocalURLPrefix is the read-only route serving disk-backed uploads.
const LocalURLPrefix = "/api/community/uploads/"

type PutResult struct {
	URL          string
	PublicID     string
	ResourceType string
}

type ObjectStore interface {
	Put(data []byte, folder, filename string) (*PutResult, error)
	Delete(publicID string) error
}

// IsLocalURL reports whether a media URL points at the local upload route.
func IsLocalURL(url string) bool {
	return strings.HasPrefix(url, LocalURLPrefix) || strings.Contains(url, LocalURLPrefix)
}

// ParsePublicID extracts the object-store public id from a delivery URL,
// i.e. the path after "upload/v<version>/", without the file extension.
func ParsePublicID(url string) string {
	idx := strings.Index(url, "/upload/")
	if idx < 0 {
		return ""
	}
	rest := strings.TrimPrefix(url[idx+len("/upload/"):], "/")
	// Skip the version segment when present (v1234567890/).
	if strings.HasPrefix(rest, "v") {
		if slash := strings.Index(rest, "/"); slash > 1 {
			allDigits := true
			for _, r := range rest[1:slash] {
				if r < '0' || r > '9' {
					allDigits = false
					break
				}
			}
			if allDigits {
				rest = rest[slash+1:]
			}
		}
	}
	if rest == "" {
		return ""
	}
	if ext := filepath.Ext(rest); ext != "" {
		rest = strings.TrimSuffix(rest, ext)
	}
	return rest
}

// LocalFilename extracts the on-disk name from a local upload URL.
func LocalFilename(url string) string {
	idx := strings.Index(url, LocalURLPrefix)
	if idx < 0 {
		return ""
	}
	return url[idx+len(LocalURLPrefix):]
}

// LocalStore writes media under a configured directory and serves it from
// the uploads route.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Put(data []byte, _ string, filename string) (*PutResult, error) {
	name := sanitizeFilename(filename)
	path := filepath.Join(s.dir, name)

	// Collision-avoiding rename: name.ext, name_1.ext, name_2.ext, ...
	base := strings.TrimSuffix(name, filepath.Ext(name))
	ext := filepath.Ext(name)
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s_%d%s", base, i, ext)
		path = filepath.Join(s.dir, name)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	return &PutResult{
		URL:          LocalURLPrefix + name,
		PublicID:     name,
		ResourceType: resourceTypeFor(ext),
	}, nil
}

func (s *LocalStore) Delete(publicID string) error {
	name := sanitizeFilename(publicID)
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	return name
}

func resourceTypeFor(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "mp4", "mov", "webm", "avi":
		return "video"
	default:
		return "image"
	}
}
