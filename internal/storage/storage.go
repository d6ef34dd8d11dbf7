// Package storage keeps uploaded images in an object store. Rows only ever
// hold the object key; URLs are issued on read.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("object not found")

// Store is an object store addressed by key.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	// URL returns a URL the browser can load the object from.
	URL(ctx context.Context, key string) (string, error)
}

// DeleteQuietly removes keys and logs failures. It is used for cleanup after
// the database write already committed or already failed, where there is no
// caller left to report to.
func DeleteQuietly(ctx context.Context, s Store, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.Delete(ctx, key); err != nil {
			log.Printf("storage delete %s: %v", key, err)
		}
	}
}

// Drivers accepted by New.
const (
	DriverCloudinary = "cloudinary"
	DriverS3         = "s3"
	DriverMemory     = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver        string
	CloudinaryURL string
	S3            S3Options
	// MediaPath is the URL prefix the memory backend is served under.
	MediaPath string
}

// New builds the backend named by opts.Driver.
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverCloudinary:
		if opts.CloudinaryURL == "" {
			return nil, errors.New("CLOUDINARY_URL is required for the cloudinary driver")
		}
		return NewCloudinary(opts.CloudinaryURL)
	case DriverS3:
		s, err := NewS3(opts.S3)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx, opts.S3.Region); err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory, "":
		return NewMemory(opts.MediaPath), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

// SignedURL resolves key for display. Empty keys and failures resolve to "";
// failures are logged.
func SignedURL(ctx context.Context, s Store, key string) string {
	if key == "" {
		return ""
	}
	u, err := s.URL(ctx, key)
	if err != nil {
		log.Printf("storage url %s: %v", key, err)
		return ""
	}
	return u
}
