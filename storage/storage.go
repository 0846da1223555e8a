// Package storage provides the byte-oriented persistent key/value capability
// the workflow store writes through. Values are opaque byte blobs; the only
// failure mode callers are expected to branch on is the quota signal.
package storage

import "errors"

// ErrQuotaExceeded is returned by Set when writing the value would push the
// store past its capacity ceiling. Check with errors.Is.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KV is the persistence capability. Get returns (nil, nil) when the name is
// absent. Set may fail with ErrQuotaExceeded; Remove of an absent name is a
// no-op.
type KV interface {
	Get(name string) ([]byte, error)
	Set(name string, data []byte) error
	Remove(name string) error
}
