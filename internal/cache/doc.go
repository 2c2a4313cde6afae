/*
Package cache implements the content-addressable object store at the
core of clcache.

Entries are addressed by a SHA-1 key derived from the compiler binary's
size and modification time, the codegen-relevant part of the command
line, and the full preprocessed source text. On disk an entry occupies
one directory, sharded by the first two hex characters of its key:

	<root>/<key[0:2]>/<key>/object      stored object file
	<root>/<key[0:2]>/<key>/output.txt  captured compiler output

Entries are immutable once written; identical keys imply identical
semantic content, so inserts overwrite unconditionally. Eviction walks
the store least-recently-accessed first (by the object blob's access
timestamp) until the total size is back under the configured maximum.

The store itself performs no locking. Callers serialize all compound
check-then-write sequences behind the cross-process lock in
internal/lock.
*/
package cache
