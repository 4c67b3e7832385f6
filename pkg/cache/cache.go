package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vietfact/newsguard/pkg/classification"
)

// ResultCache stores recent classification results keyed by input text.
// Viral messages tend to be submitted verbatim many times; caching skips the
// model round-trip for exact repeats.
type ResultCache interface {
	// Get returns the cached output for the text, or (nil, false) on miss.
	Get(ctx context.Context, text string) (*classification.ModelOutput, bool)
	// Set stores the output for the text.
	Set(ctx context.Context, text string, out *classification.ModelOutput)
	// Close releases backend resources.
	Close() error
}

// Options configures a result cache backend.
type Options struct {
	BackendType string // "memory" or "redis"
	RedisAddr   string
	TTLSeconds  int
	MaxEntries  int
}

// NewResultCache creates the configured cache backend.
func NewResultCache(opts Options) (ResultCache, error) {
	switch opts.BackendType {
	case "", "memory":
		return newMemoryCache(opts.MaxEntries, opts.TTLSeconds), nil
	case "redis":
		return newRedisCache(opts.RedisAddr, opts.TTLSeconds)
	default:
		return nil, fmt.Errorf("unsupported cache backend: %q", opts.BackendType)
	}
}

// cacheKey hashes the input text so arbitrarily long articles produce fixed
// size keys.
func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "newsguard:result:" + hex.EncodeToString(sum[:])
}
