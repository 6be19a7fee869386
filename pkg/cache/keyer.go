package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey is the key of the persisted vector of one topology group.
	LayoutKey(topology, group string) string

	// CompileKey is the key of a compiled geometry map.
	CompileKey(topology string, opts CompileKeyOpts) string
}

// CompileKeyOpts are the inputs of a geometry compilation that affect its
// output.
type CompileKeyOpts struct {
	Proportions map[string][]float64 `json:"proportions"`
	GapPx       float64              `json:"gap_px"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<topology>/<group>".
func (DefaultKeyer) LayoutKey(topology, group string) string {
	return "layout:" + topology + "/" + group
}

// CompileKey hashes the topology name together with its inputs.
func (DefaultKeyer) CompileKey(topology string, opts CompileKeyOpts) string {
	return hashKey("compile", topology, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, e.g. a user or board id, so that
// several boards sharing one cache do not see each other's layouts.
//
//	k := cache.NewScopedKeyer(nil, "board:ops:")
//	k.LayoutKey("four-grid", "rows") // "board:ops:layout:four-grid/rows"
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(topology, group string) string {
	return k.prefix + k.inner.LayoutKey(topology, group)
}

// CompileKey generates a prefixed compile key.
func (k *ScopedKeyer) CompileKey(topology string, opts CompileKeyOpts) string {
	return k.prefix + k.inner.CompileKey(topology, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash computes a SHA-256 hash of the input data as 64 hex characters.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
