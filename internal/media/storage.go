// Package media stores image attachments of posts.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("media not found")
	ErrNotImage   = errors.New("file is not an image")
	ErrInvalidKey = errors.New("invalid media key")
)

// Storage saves, serves and removes uploaded files by key.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewPostImageKey returns a fresh key under posts/ keeping the extension of
// the uploaded file name.
func NewPostImageKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return "posts/" + uuid.NewString() + ext
}

// DetectImage sniffs the head of r and fails unless it is an image. The
// returned reader replays the sniffed bytes.
func DetectImage(r io.Reader) (io.Reader, *mimetype.MIME, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, mt, ErrNotImage
	}
	return io.MultiReader(bytes.NewReader(head), r), mt, nil
}

// ValidKey rejects keys that could escape the storage root.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	clean := path.Clean(key)
	return clean == key && !strings.HasPrefix(clean, "../") && clean != ".."
}
