package cache

import (
	"io"
	"os"
	"path/filepath"

	cerrors "github.com/jonastr/clcache/pkg/errors"
)

const (
	objectName = "object"
	outputName = "output.txt"
)

// Store is the on-disk content-addressable store. It owns every entry
// directory under its root; the persisted documents and the lock file
// live beside the shard directories and are owned by their packages.
type Store struct {
	root string
}

// NewStore opens (creating if needed) the store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, cerrors.Wrap(cerrors.CodeStoreIO, "create cache directory", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) entryDir(key string) string {
	return filepath.Join(s.root, key[:2], key)
}

// ObjectPath returns where the object blob for key lives (or would live).
func (s *Store) ObjectPath(key string) string {
	return filepath.Join(s.entryDir(key), objectName)
}

func (s *Store) outputPath(key string) string {
	return filepath.Join(s.entryDir(key), outputName)
}

// Exists reports whether an entry for key is present.
func (s *Store) Exists(key string) bool {
	_, err := os.Stat(s.ObjectPath(key))
	return err == nil
}

// Insert stores the object file and the captured compiler output under
// key, replacing any previous entry wholesale. It returns the stored
// object size for statistics accounting, which the store does not track
// itself.
func (s *Store) Insert(key, objectFile string, compilerOutput []byte) (int64, error) {
	if err := os.MkdirAll(s.entryDir(key), 0o755); err != nil {
		return 0, cerrors.Wrap(cerrors.CodeStoreIO, "create entry directory", err)
	}
	size, err := copyFile(objectFile, s.ObjectPath(key))
	if err != nil {
		return 0, cerrors.Wrap(cerrors.CodeStoreIO, "store object file", err)
	}
	if err := os.WriteFile(s.outputPath(key), compilerOutput, 0o644); err != nil {
		return 0, cerrors.Wrap(cerrors.CodeStoreIO, "store compiler output", err)
	}
	return size, nil
}

// Fetch returns the stored object path and compiler output for key.
func (s *Store) Fetch(key string) (string, []byte, error) {
	if !s.Exists(key) {
		return "", nil, cerrors.Newf(cerrors.CodeEntryNotFound, "no entry for key %s", key)
	}
	output, err := os.ReadFile(s.outputPath(key))
	if err != nil {
		return "", nil, cerrors.Wrap(cerrors.CodeStoreIO, "read compiler output", err)
	}
	return s.ObjectPath(key), output, nil
}

// CopyObject copies the stored object blob for key to dest.
func (s *Store) CopyObject(key, dest string) error {
	if !s.Exists(key) {
		return cerrors.Newf(cerrors.CodeEntryNotFound, "no entry for key %s", key)
	}
	if _, err := copyFile(s.ObjectPath(key), dest); err != nil {
		return cerrors.Wrap(cerrors.CodeStoreIO, "copy object to output path", err)
	}
	return nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return 0, err
	}
	return n, out.Close()
}
