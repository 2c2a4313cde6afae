package persist

import "path/filepath"

// ConfigFile is the configuration document inside the cache root.
const ConfigFile = "config.txt"

// DefaultMaximumCacheSize bounds the cache at roughly 1 GB.
const DefaultMaximumCacheSize = int64(1000000 * 1024)

const keyMaximumCacheSize = "MaximumCacheSize"

// Configuration is the typed view over the persisted tunables.
type Configuration struct {
	doc *Dict
}

// LoadConfiguration loads config.txt from the cache root, filling in the
// default for any missing key.
func LoadConfiguration(cacheDir string) *Configuration {
	c := &Configuration{doc: LoadDict(filepath.Join(cacheDir, ConfigFile))}
	if !c.doc.Contains(keyMaximumCacheSize) {
		c.doc.SetInt(keyMaximumCacheSize, DefaultMaximumCacheSize)
	}
	return c
}

// Recovered reports whether a corrupt document was reset on load.
func (c *Configuration) Recovered() bool { return c.doc.Recovered() }

func (c *Configuration) MaximumCacheSize() int64 {
	return c.doc.GetInt(keyMaximumCacheSize)
}

func (c *Configuration) SetMaximumCacheSize(size int64) {
	c.doc.SetInt(keyMaximumCacheSize, size)
}

// Save persists the document if it changed.
func (c *Configuration) Save() error { return c.doc.Save() }
