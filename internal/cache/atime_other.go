//go:build !linux && !darwin && !windows

package cache

import (
	"io/fs"
	"time"
)

// Platforms without a known atime field fall back to mtime, which for
// write-once entries is the insertion time.
func accessTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
