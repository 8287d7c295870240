package phamt

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Config fixes the trie shape for a Tree instance: the bit width the host
// hash function is assumed to produce, and how many bits of that hash
// each trie level consumes. Disagreement between a host's actual hash
// width and the assumed slicing depth is resolved by making HashWidth an
// explicit, validated field rather than an implicit assumption.
type Config struct {
	// HashWidth is the bit width of hashes produced by the Tree's Hasher.
	// Must be 32 or 64. Fixes the maximum trie depth at
	// ceil(HashWidth/BranchBits) levels.
	HashWidth int

	// BranchBits is the number of hash bits each trie level consumes.
	// Defaults to 5 (32-way branching). Need not evenly divide HashWidth:
	// the final level simply consumes whatever bits remain.
	BranchBits int

	// HashCacheSize, when positive, wraps the Tree's Hasher in a bounded
	// LRU memoization cache (see hash.go) so repeated lookups of the same
	// key do not re-run a potentially expensive host hash function. Zero
	// disables the cache. This memoizes the pure Hasher function; it does
	// not change how any tree is built or shaped.
	HashCacheSize int
}

// DefaultConfig returns the Config a Tree uses when none is supplied:
// 64-bit hashes, 5-bit (32-way) branching, no hash memoization.
func DefaultConfig() Config {
	return Config{
		HashWidth:     64,
		BranchBits:    defaultBranchBits,
		HashCacheSize: 0,
	}
}

// NewConfig validates cfg and returns it, or a *multierror.Error
// aggregating every violation found — not just the first — using
// github.com/hashicorp/go-multierror, the same library the rest of the
// retrieved pack (inngest-inngest) reaches for when a single validation
// pass can fail in more than one independent way.
func NewConfig(cfg Config) (Config, error) {
	var errs *multierror.Error

	if cfg.HashWidth != 32 && cfg.HashWidth != 64 {
		errs = multierror.Append(errs, fmt.Errorf("hash_width must be 32 or 64, got %d", cfg.HashWidth))
	}
	if cfg.BranchBits <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("branch_bits must be positive, got %d", cfg.BranchBits))
	}
	if cfg.BranchBits > maxBranchBits {
		errs = multierror.Append(errs, fmt.Errorf("branch_bits must be at most %d (bitmap node occupancy is a 32-bit word), got %d", maxBranchBits, cfg.BranchBits))
	}
	if cfg.HashCacheSize < 0 {
		errs = multierror.Append(errs, fmt.Errorf("hash_cache_size must not be negative, got %d", cfg.HashCacheSize))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
