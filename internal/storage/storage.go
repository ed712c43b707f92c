package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Package storage contains blob storage abstractions for the shared case spreadsheet and its audit log.
// The local backend serves files on a (possibly network-mounted) directory; the S3 backend serves MinIO/S3.

// ErrObjectNotFound is returned by Get and Stat when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Storage is the blob interface the repository and audit log are written against.
// Put must replace the object atomically: readers observe either the old or the new content.
type Storage interface {
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Put replaces the object under key with the reader's content.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Append adds data to the end of the object, creating it when missing.
	Append(ctx context.Context, key string, data []byte) error
	// Stat returns object info without reading content.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
}
