// Package services implements the feed, follow and post write paths on top
// of the repositories.
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound reports a missing post, group or user.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthor reports an edit attempt by somebody other than the author.
	ErrNotAuthor = errors.New("not the author of the post")
)

// FieldErrors maps form field names to validation messages. A non-empty
// FieldErrors means nothing was written.
type FieldErrors map[string]string

func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
