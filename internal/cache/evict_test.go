package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// insertSized stores an entry of exactly size bytes under a synthetic
// key and backdates its object's access time by age.
func insertSized(t *testing.T, s *Store, seq int, size int, age time.Duration) string {
	t.Helper()
	key := fmt.Sprintf("%02x%038d", seq, seq)
	obj := filepath.Join(t.TempDir(), "o.obj")
	require.NoError(t, os.WriteFile(obj, make([]byte, size), 0o644))
	_, err := s.Insert(key, obj, []byte("output"))
	require.NoError(t, err)

	when := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(s.ObjectPath(key), when, when))
	return key
}

func measuredSize(t *testing.T, s *Store) int64 {
	t.Helper()
	entries, err := s.enumerate()
	require.NoError(t, err)
	var total int64
	for _, e := range entries {
		total += e.size
	}
	return total
}

func TestEvictNoopUnderLimit(t *testing.T) {
	s := newTestStore(t)
	insertSized(t, s, 1, 100, time.Hour)

	size, err := s.Evict(100, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(100), size, "under the limit nothing is touched")
	assert.Equal(t, int64(100), measuredSize(t, s))
}

func TestEvictRemovesOldestFirst(t *testing.T) {
	s := newTestStore(t)
	oldest := insertSized(t, s, 1, 400, 3*time.Hour)
	middle := insertSized(t, s, 2, 400, 2*time.Hour)
	newest := insertSized(t, s, 3, 400, 1*time.Hour)

	size, err := s.Evict(1200, 1000)
	require.NoError(t, err)

	assert.Equal(t, int64(800), size)
	assert.False(t, s.Exists(oldest), "least recently accessed entry must go first")
	assert.True(t, s.Exists(middle))
	assert.True(t, s.Exists(newest))
}

func TestEvictRemovesWholeEntryDirectories(t *testing.T) {
	s := newTestStore(t)
	key := insertSized(t, s, 1, 600, 2*time.Hour)
	insertSized(t, s, 2, 600, time.Hour)

	_, err := s.Evict(1200, 1000)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(s.Root(), key[:2], key))
	assert.True(t, os.IsNotExist(statErr), "object and output must go as a unit")
}

func TestEvictCorrectsDriftedSizeCounter(t *testing.T) {
	s := newTestStore(t)
	insertSized(t, s, 1, 300, 2*time.Hour)
	insertSized(t, s, 2, 300, time.Hour)

	// Caller passes a drifted size; the result is the measured total.
	size, err := s.Evict(90000, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(600), size)
	assert.Equal(t, measuredSize(t, s), size)
}

func TestEvictInvariant(t *testing.T) {
	s := newTestStore(t)
	var total int64
	for i := 1; i <= 8; i++ {
		insertSized(t, s, i, 250, time.Duration(9-i)*time.Hour)
		total += 250
	}

	const maximum = 1000
	size, err := s.Evict(total, maximum)
	require.NoError(t, err)

	assert.Less(t, size, int64(maximum))
	assert.Equal(t, measuredSize(t, s), size)
}

func TestEvictIgnoresForeignFiles(t *testing.T) {
	s := newTestStore(t)
	insertSized(t, s, 1, 500, 2*time.Hour)
	insertSized(t, s, 2, 500, time.Hour)

	// The persisted documents and lock file live beside the shards.
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "stats.txt"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "cache.lock"), nil, 0o644))

	size, err := s.Evict(1000, 600)
	require.NoError(t, err)
	assert.Equal(t, int64(500), size)
	assert.FileExists(t, filepath.Join(s.Root(), "stats.txt"))
	assert.FileExists(t, filepath.Join(s.Root(), "cache.lock"))
}
