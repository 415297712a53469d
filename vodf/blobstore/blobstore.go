// Package blobstore stores component payloads and resolves vodf.Location references to them.
//
// A Location maps to one object: Key alone when HDU is empty, otherwise Key + "/" + the
// path-escaped HDU name, so every HDU of a response file is its own object. Drivers live in
// the fs, memory and s3 subpackages.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/vodfgo/vodf/vodf"
)

var (
	ErrNotFound       = errors.New("blob not found")
	ErrAlreadyExists  = errors.New("blob already exists")
	ErrInvalidKey     = errors.New("invalid blob key")
	ErrPayloadTooBig  = errors.New("blob payload exceeds limit")
	ErrNilStore       = errors.New("blob store must not be nil")
	ErrUnknownDriver  = errors.New("unknown blob driver")
	ErrResolveFailure = errors.New("resolving component payload failed")
)

// Driver names a Store implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverMemory     Driver = "memory"
	DriverS3         Driver = "s3"
)

// ParseDriver validates a driver name.
func ParseDriver(name string) (Driver, error) {
	switch d := Driver(strings.ToLower(name)); d {
	case DriverFilesystem, DriverMemory, DriverS3:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}
}

// Info describes a stored object.
type Info struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// Store is a flat key/value object store. Put never overwrites.
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, r io.Reader) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
}

// CleanKey rejects empty, absolute and escaping keys and normalizes the rest.
func CleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}

	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return path.Clean(key), nil
}

// ObjectKey returns the object key holding the payload at loc.
func ObjectKey(loc vodf.Location) string {
	if loc.HDU == "" {
		return loc.Key
	}

	return loc.Key + "/" + url.PathEscape(loc.HDU)
}
