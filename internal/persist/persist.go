// Package persist implements the durable JSON documents that survive
// across cache invocations: one generic key-value document plus the
// typed configuration and statistics views built on top of it.
//
// Documents are loaded eagerly, mutated in memory, and written back at
// most once per process if anything changed. A document that cannot be
// loaded (missing, truncated, corrupt) is recovered as an empty one;
// callers that care can check Recovered.
package persist

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	cerrors "github.com/jonastr/clcache/pkg/errors"
)

// Dict is a persistent string-to-JSON-value mapping backed by one file.
type Dict struct {
	path      string
	values    map[string]any
	dirty     bool
	recovered bool
}

// LoadDict reads the document at path. Load failures are not fatal: the
// dict starts empty and Recovered reports whether prior state was lost.
func LoadDict(path string) *Dict {
	d := &Dict{path: path, values: make(map[string]any)}

	data, err := os.ReadFile(path)
	if err != nil {
		// A missing file is the normal first-use case, not corruption.
		d.recovered = !os.IsNotExist(err)
		return d
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&d.values); err != nil {
		d.values = make(map[string]any)
		d.recovered = true
	}
	return d
}

// Recovered reports whether the on-disk document existed but could not
// be loaded, so its prior contents were discarded.
func (d *Dict) Recovered() bool {
	return d.recovered
}

// Contains reports whether key is present.
func (d *Dict) Contains(key string) bool {
	_, ok := d.values[key]
	return ok
}

// GetInt returns the integer value stored under key, or 0 if the key is
// absent or not an integer.
func (d *Dict) GetInt(key string) int64 {
	n, ok := d.values[key].(json.Number)
	if !ok {
		return 0
	}
	v, err := n.Int64()
	if err != nil {
		return 0
	}
	return v
}

// SetInt stores an integer value and marks the document dirty.
func (d *Dict) SetInt(key string, value int64) {
	d.values[key] = json.Number(strconv.FormatInt(value, 10))
	d.dirty = true
}

// AddInt increments the integer value under key by delta.
func (d *Dict) AddInt(key string, delta int64) {
	d.SetInt(key, d.GetInt(key)+delta)
}

// Save writes the document back if and only if it was mutated. The file
// is replaced whole via a temporary sibling.
func (d *Dict) Save() error {
	if !d.dirty {
		return nil
	}
	data, err := json.Marshal(d.values)
	if err != nil {
		return cerrors.Wrap(cerrors.CodeStoreIO, "encode document", err)
	}
	tmp := d.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return cerrors.Wrap(cerrors.CodeStoreIO, "create document directory", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return cerrors.Wrap(cerrors.CodeStoreIO, "write document", err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		return cerrors.Wrap(cerrors.CodeStoreIO, "replace document", err)
	}
	d.dirty = false
	return nil
}
