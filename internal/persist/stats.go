package persist

import "path/filepath"

// StatsFile is the statistics document inside the cache root.
const StatsFile = "stats.txt"

// Statistics document keys. These names are part of the on-disk format.
const (
	keyCallsWithoutSourceFile       = "CallsWithoutSourceFile"
	keyCallsWithMultipleSourceFiles = "CallsWithMultipleSourceFiles"
	keyCallsForLinking              = "CallsForLinking"
	keyCacheEntries                 = "CacheEntries"
	keyCacheSize                    = "CacheSize"
	keyCacheHits                    = "CacheHits"
	keyCacheMisses                  = "CacheMisses"
)

var statsKeys = []string{
	keyCallsWithoutSourceFile,
	keyCallsWithMultipleSourceFiles,
	keyCallsForLinking,
	keyCacheEntries,
	keyCacheSize,
	keyCacheHits,
	keyCacheMisses,
}

// Statistics is the typed view over the persisted counters. All counters
// only grow, except CacheSize which eviction resets to the measured
// on-disk total.
type Statistics struct {
	doc *Dict
}

// LoadStatistics loads stats.txt from the cache root, zero-filling any
// missing counter.
func LoadStatistics(cacheDir string) *Statistics {
	s := &Statistics{doc: LoadDict(filepath.Join(cacheDir, StatsFile))}
	for _, k := range statsKeys {
		if !s.doc.Contains(k) {
			s.doc.SetInt(k, 0)
		}
	}
	return s
}

// Recovered reports whether a corrupt document was reset on load.
func (s *Statistics) Recovered() bool { return s.doc.Recovered() }

func (s *Statistics) CallsWithoutSourceFile() int64 { return s.doc.GetInt(keyCallsWithoutSourceFile) }
func (s *Statistics) RegisterCallWithoutSourceFile() {
	s.doc.AddInt(keyCallsWithoutSourceFile, 1)
}

func (s *Statistics) CallsWithMultipleSourceFiles() int64 {
	return s.doc.GetInt(keyCallsWithMultipleSourceFiles)
}
func (s *Statistics) RegisterCallWithMultipleSourceFiles() {
	s.doc.AddInt(keyCallsWithMultipleSourceFiles, 1)
}

func (s *Statistics) CallsForLinking() int64 { return s.doc.GetInt(keyCallsForLinking) }
func (s *Statistics) RegisterCallForLinking() {
	s.doc.AddInt(keyCallsForLinking, 1)
}

func (s *Statistics) CacheEntries() int64 { return s.doc.GetInt(keyCacheEntries) }

// RegisterCacheEntry accounts for one stored entry of the given size.
func (s *Statistics) RegisterCacheEntry(size int64) {
	s.doc.AddInt(keyCacheEntries, 1)
	s.doc.AddInt(keyCacheSize, size)
}

func (s *Statistics) CacheSize() int64 { return s.doc.GetInt(keyCacheSize) }

// SetCacheSize overwrites the size counter with a measured total,
// correcting any accumulated drift.
func (s *Statistics) SetCacheSize(size int64) {
	s.doc.SetInt(keyCacheSize, size)
}

func (s *Statistics) CacheHits() int64 { return s.doc.GetInt(keyCacheHits) }
func (s *Statistics) RegisterCacheHit() {
	s.doc.AddInt(keyCacheHits, 1)
}

func (s *Statistics) CacheMisses() int64 { return s.doc.GetInt(keyCacheMisses) }
func (s *Statistics) RegisterCacheMiss() {
	s.doc.AddInt(keyCacheMisses, 1)
}

// Save persists the document if any counter changed.
func (s *Statistics) Save() error { return s.doc.Save() }
