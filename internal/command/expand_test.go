package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

// writeResponseFile writes tokens as a UTF-16LE file with a BOM, the
// way cl.exe emits response files.
func writeResponseFile(t *testing.T, path, content string) {
	t.Helper()
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte(content))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestExpandPassthrough(t *testing.T) {
	in := []string{"cl", "/c", "/W4", "foo.cpp"}
	out, err := Expand(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestExpandResponseFile(t *testing.T) {
	dir := t.TempDir()
	rsp := filepath.Join(dir, "args.rsp")
	writeResponseFile(t, rsp, "/c /O2\nfoo.cpp")

	out, err := Expand([]string{"cl", "@" + rsp, "/W4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cl", "/c", "/O2", "foo.cpp", "/W4"}, out)
}

func TestExpandNestedResponseFiles(t *testing.T) {
	dir := t.TempDir()
	inner := filepath.Join(dir, "inner.rsp")
	outer := filepath.Join(dir, "outer.rsp")
	writeResponseFile(t, inner, "foo.cpp")
	writeResponseFile(t, outer, "/c @"+inner)

	out, err := Expand([]string{"cl", "@" + outer})
	require.NoError(t, err)
	assert.Equal(t, []string{"cl", "/c", "foo.cpp"}, out)
}

func TestExpandBigEndianBOM(t *testing.T) {
	dir := t.TempDir()
	rsp := filepath.Join(dir, "be.rsp")
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("/c foo.cpp"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(rsp, data, 0o644))

	out, err := Expand([]string{"cl", "@" + rsp})
	require.NoError(t, err)
	assert.Equal(t, []string{"cl", "/c", "foo.cpp"}, out)
}

func TestExpandSelfReferenceIsBounded(t *testing.T) {
	dir := t.TempDir()
	rsp := filepath.Join(dir, "loop.rsp")
	writeResponseFile(t, rsp, "@"+rsp)

	_, err := Expand([]string{"cl", "@" + rsp})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested deeper")
}

func TestExpandMissingResponseFile(t *testing.T) {
	_, err := Expand([]string{"cl", "@" + filepath.Join(t.TempDir(), "absent.rsp")})
	require.Error(t, err)
}
