// Package blobs provides flat byte stores for cached documents: a local
// directory, process memory, or an S3-compatible bucket.
package blobs

import (
	"errors"
	"regexp"
)

// Driver names a backend.
type Driver string

const (
	DriverFS     Driver = "fs"
	DriverMemory Driver = "memory"
	DriverS3     Driver = "s3"
)

// Info describes a stored blob.
type Info struct {
	Name string
	Size int64
}

var (
	// ErrNotFound is returned for names with no blob.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidName is returned for names that could escape the store.
	ErrInvalidName = errors.New("invalid blob name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateName accepts flat names made of letters, digits, dot, dash and
// underscore. Dot-only names are rejected.
func ValidateName(name string) error {
	if !validName.MatchString(name) || name == "." || name == ".." {
		return ErrInvalidName
	}
	return nil
}
