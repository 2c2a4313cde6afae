package cache

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	cerrors "github.com/jonastr/clcache/pkg/errors"
)

type entryInfo struct {
	dir      string
	size     int64
	accessed time.Time
}

// Evict brings the store back under maximumSize by removing entries in
// least-recently-accessed order, judged by the object blob's access
// timestamp. When currentSize is already under the limit nothing is
// touched and currentSize is returned as-is. Otherwise the returned
// size is the measured total of the surviving entries, so a drifted
// statistics counter corrects itself here.
//
// Access-time ordering depends on the filesystem actually updating
// atime on reads; with noatime mounts the order degrades to insertion
// order.
func (s *Store) Evict(currentSize, maximumSize int64) (int64, error) {
	if currentSize < maximumSize {
		return currentSize, nil
	}

	entries, err := s.enumerate()
	if err != nil {
		return currentSize, err
	}

	var total int64
	for _, e := range entries {
		total += e.size
	}

	// Oldest first.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].accessed.Before(entries[j].accessed)
	})

	for _, e := range entries {
		if total < maximumSize {
			break
		}
		if err := os.RemoveAll(e.dir); err != nil {
			return total, cerrors.Wrap(cerrors.CodeStoreIO, "remove entry", err)
		}
		total -= e.size
	}
	return total, nil
}

// enumerate walks the shard directories and stats every entry's object
// blob. Entries count their object size only, matching what the
// statistics counter accumulates on insert.
func (s *Store) enumerate() ([]entryInfo, error) {
	shards, err := os.ReadDir(s.root)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.CodeStoreIO, "read cache root", err)
	}

	var entries []entryInfo
	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		shardDir := filepath.Join(s.root, shard.Name())
		keys, err := os.ReadDir(shardDir)
		if err != nil {
			return nil, cerrors.Wrap(cerrors.CodeStoreIO, "read shard directory", err)
		}
		for _, key := range keys {
			if !key.IsDir() {
				continue
			}
			entryDir := filepath.Join(shardDir, key.Name())
			info, err := os.Stat(filepath.Join(entryDir, objectName))
			if err != nil {
				// Half-written entry; skip rather than fail the pass.
				continue
			}
			entries = append(entries, entryInfo{
				dir:      entryDir,
				size:     info.Size(),
				accessed: accessTime(info),
			})
		}
	}
	return entries, nil
}
