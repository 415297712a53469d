// Package fs implements blobstore.Store on the local filesystem. Each object is a file under
// the root with a JSON sidecar (file name + ".meta") holding its size and sha256 ETag.
package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/vodfgo/vodf/vodf/blobstore"
)

const metaSuffix = ".meta"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store keeps objects below root.
type Store struct {
	root string
}

type metaFile struct {
	ETag      string    `json:"etag"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// New returns a Store rooted at root, creating the directory if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty root", blobstore.ErrInvalidKey)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	return &Store{root: root}, nil
}

func (s *Store) Driver() blobstore.Driver { return blobstore.DriverFilesystem }

func (s *Store) pathFor(key string) (dataPath, metaPath, cleanKey string, err error) {
	cleanKey, err = blobstore.CleanKey(key)
	if err != nil {
		return "", "", "", err
	}

	if strings.HasSuffix(cleanKey, metaSuffix) {
		return "", "", "", fmt.Errorf("%w: %q uses the reserved %s suffix", blobstore.ErrInvalidKey, key, metaSuffix)
	}

	dataPath = filepath.Join(s.root, filepath.FromSlash(cleanKey))

	return dataPath, dataPath + metaSuffix, cleanKey, nil
}

// Put streams r into a temp file and renames it into place. It fails if key exists.
func (s *Store) Put(_ context.Context, key string, r io.Reader) (blobstore.Info, error) {
	dataPath, metaPath, cleanKey, err := s.pathFor(key)
	if err != nil {
		return blobstore.Info{}, err
	}

	if _, statErr := os.Stat(dataPath); statErr == nil {
		return blobstore.Info{}, fmt.Errorf("%w: %s", blobstore.ErrAlreadyExists, key)
	}

	if err = os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return blobstore.Info{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return blobstore.Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return blobstore.Info{}, err
	}

	if err = os.Rename(tmp.Name(), dataPath); err != nil {
		return blobstore.Info{}, err
	}

	meta := metaFile{ETag: hex.EncodeToString(h.Sum(nil)), Size: size, CreatedAt: time.Now().UTC()}
	if err = writeMeta(metaPath, meta); err != nil {
		return blobstore.Info{}, err
	}

	return blobstore.Info{Key: cleanKey, Size: size, ETag: meta.ETag, LastModified: meta.CreatedAt}, nil
}

func (s *Store) Get(ctx context.Context, key string) (blobstore.Info, io.ReadCloser, error) {
	info, err := s.Head(ctx, key)
	if err != nil {
		return blobstore.Info{}, nil, err
	}

	dataPath, _, _, err := s.pathFor(key)
	if err != nil {
		return blobstore.Info{}, nil, err
	}

	file, err := os.Open(dataPath)
	if err != nil {
		return blobstore.Info{}, nil, notFound(key, err)
	}

	return info, file, nil
}

func (s *Store) Head(_ context.Context, key string) (blobstore.Info, error) {
	dataPath, metaPath, cleanKey, err := s.pathFor(key)
	if err != nil {
		return blobstore.Info{}, err
	}

	stat, err := os.Stat(dataPath)
	if err != nil {
		return blobstore.Info{}, notFound(key, err)
	}

	info := blobstore.Info{Key: cleanKey, Size: stat.Size(), LastModified: stat.ModTime().UTC()}

	if meta, metaErr := readMeta(metaPath); metaErr == nil {
		info.ETag = meta.ETag
	}

	return info, nil
}

// Delete removes the object and its sidecar and reports whether the object existed.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	dataPath, metaPath, _, err := s.pathFor(key)
	if err != nil {
		return false, err
	}

	if err = os.Remove(dataPath); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return false, nil
		}

		return false, err
	}

	if err = os.Remove(metaPath); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return true, err
	}

	return true, nil
}

// List walks the root and returns the objects whose key starts with prefix, sorted by key.
func (s *Store) List(ctx context.Context, prefix string) ([]blobstore.Info, error) {
	infos := make([]blobstore.Info, 0)

	err := filepath.WalkDir(s.root, func(p string, d iofs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		name := d.Name()
		if d.IsDir() || strings.HasSuffix(name, metaSuffix) || strings.HasPrefix(name, ".tmp-") {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}

		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := s.Head(ctx, key)
		if err != nil {
			return err
		}

		infos = append(infos, info)

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(infos, func(a, b blobstore.Info) int { return strings.Compare(a.Key, b.Key) })

	return infos, nil
}

func notFound(key string, err error) error {
	if errors.Is(err, iofs.ErrNotExist) {
		return fmt.Errorf("%w: %s", blobstore.ErrNotFound, key)
	}

	return err
}

func writeMeta(p string, meta metaFile) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	return os.WriteFile(p, data, 0o644)
}

func readMeta(p string) (metaFile, error) {
	var meta metaFile

	data, err := os.ReadFile(p)
	if err != nil {
		return meta, err
	}

	return meta, json.Unmarshal(data, &meta)
}

var _ blobstore.Store = (*Store)(nil)
