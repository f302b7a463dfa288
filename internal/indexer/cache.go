package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/sdkref/internal/symbols"
)

// extractionCache memoizes per-file extraction results by content hash, so
// watch-mode reruns and reverted edits skip parsing.
type extractionCache struct {
	cache   otter.Cache[string, []symbols.Symbol]
	enabled bool
}

// newExtractionCache creates a cache holding up to capacity files.
// A capacity of zero or less disables caching.
func newExtractionCache(capacity int) (*extractionCache, error) {
	if capacity <= 0 {
		return &extractionCache{}, nil
	}

	cache, err := otter.MustBuilder[string, []symbols.Symbol](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction cache: %w", err)
	}
	return &extractionCache{cache: cache, enabled: true}, nil
}

func (c *extractionCache) Get(key string) ([]symbols.Symbol, bool) {
	if !c.enabled {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *extractionCache) Set(key string, syms []symbols.Symbol) {
	if c.enabled {
		c.cache.Set(key, syms)
	}
}

func (c *extractionCache) Close() {
	if c.enabled {
		c.cache.Close()
	}
}

// contentHash identifies one extraction: the same bytes under another path,
// namespace, language or extraction settings produce different symbols.
func contentHash(settings, language, path, namespace string, source []byte) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00", settings, language, path, namespace)
	h.Write(source)
	return hex.EncodeToString(h.Sum(nil))
}
