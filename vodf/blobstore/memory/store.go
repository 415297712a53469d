// Package memory implements an in-memory blobstore.Store.
package memory

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vodfgo/vodf/vodf/blobstore"
)

type object struct {
	info blobstore.Info
	data []byte
}

// Store keeps objects in process memory.
type Store struct {
	mu   sync.RWMutex
	objs map[string]object
}

// New returns an empty Store.
func New() *Store {
	return &Store{objs: make(map[string]object)}
}

func (s *Store) Driver() blobstore.Driver { return blobstore.DriverMemory }

// Put stores a new object and fails with ErrAlreadyExists if key is taken.
func (s *Store) Put(_ context.Context, key string, r io.Reader) (blobstore.Info, error) {
	key, err := blobstore.CleanKey(key)
	if err != nil {
		return blobstore.Info{}, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return blobstore.Info{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objs[key]; exists {
		return blobstore.Info{}, fmt.Errorf("%w: %s", blobstore.ErrAlreadyExists, key)
	}

	sum := sha256.Sum256(data)
	info := blobstore.Info{
		Key:          key,
		Size:         int64(len(data)),
		ETag:         hex.EncodeToString(sum[:]),
		LastModified: time.Now().UTC(),
	}
	s.objs[key] = object{info: info, data: data}

	return info, nil
}

func (s *Store) Get(_ context.Context, key string) (blobstore.Info, io.ReadCloser, error) {
	s.mu.RLock()
	obj, ok := s.objs[key]
	s.mu.RUnlock()

	if !ok {
		return blobstore.Info{}, nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, key)
	}

	return obj.info, io.NopCloser(bytes.NewReader(slices.Clone(obj.data))), nil
}

func (s *Store) Head(_ context.Context, key string) (blobstore.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objs[key]
	if !ok {
		return blobstore.Info{}, fmt.Errorf("%w: %s", blobstore.ErrNotFound, key)
	}

	return obj.info, nil
}

// Delete removes key and reports whether it existed.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.objs[key]
	delete(s.objs, key)

	return ok, nil
}

// List returns the objects under prefix sorted by key.
func (s *Store) List(_ context.Context, prefix string) ([]blobstore.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]blobstore.Info, 0, len(s.objs))
	for key, obj := range s.objs {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, obj.info)
		}
	}

	slices.SortFunc(infos, func(a, b blobstore.Info) int { return strings.Compare(a.Key, b.Key) })

	return infos, nil
}

var _ blobstore.Store = (*Store)(nil)
