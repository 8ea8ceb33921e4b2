package manager

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/duynguyendang/listmembers/pkg/chain"
	"github.com/duynguyendang/listmembers/pkg/recordio"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxIndexes bounds how many reconstructed indexes stay in memory.
const DefaultMaxIndexes = 4

// IndexManager builds reverse indexes from pair files and keeps recently used
// ones, so jobs sharing a pair file reconstruct it once per run.
type IndexManager struct {
	indexes *lru.Cache[string, *chain.Index]
	mu      sync.Mutex
	strict  bool
	builds  int
}

// NewIndexManager creates a manager holding at most size indexes.
func NewIndexManager(size int, strict bool) *IndexManager {
	if size <= 0 {
		size = DefaultMaxIndexes
	}
	cache, _ := lru.NewWithEvict[string, *chain.Index](size, func(key string, value *chain.Index) {
		slog.Debug("evicting index", "pairs", key, "tokens", value.Len())
	})

	return &IndexManager{
		indexes: cache,
		strict:  strict,
	}
}

func cacheKey(path string, strict bool) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if strict {
		return "strict:" + path
	}
	return path
}

// GetIndex returns the index for the pair file at path, building it if needed.
func (im *IndexManager) GetIndex(path string) (*chain.Index, error) {
	return im.GetIndexWith(path, im.strict)
}

// GetIndexWith is GetIndex with an explicit strictness, for jobs that
// override the manager default.
func (im *IndexManager) GetIndexWith(path string, strict bool) (*chain.Index, error) {
	key := cacheKey(path, strict)
	if idx, ok := im.indexes.Get(key); ok {
		return idx, nil
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	// Double-check under lock
	if idx, ok := im.indexes.Get(key); ok {
		return idx, nil
	}

	idx, err := chain.Build(recordio.Pairs(path), chain.WithStrict(strict))
	if err != nil {
		return nil, fmt.Errorf("failed to build index from %s: %w", path, err)
	}
	im.builds++
	slog.Info("index built", "pairs", path, "lists", idx.NumLists(), "tokens", idx.Len(), "strict", strict)

	im.indexes.Add(key, idx)
	return idx, nil
}

// Builds returns how many indexes were reconstructed from disk.
func (im *IndexManager) Builds() int {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.builds
}

// Len returns the number of cached indexes.
func (im *IndexManager) Len() int {
	return im.indexes.Len()
}

// Purge drops all cached indexes.
func (im *IndexManager) Purge() {
	im.indexes.Purge()
}
