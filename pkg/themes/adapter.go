package themes

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Loader provides cached loading of KindSets from a base directory.
type Loader struct {
	baseDir string
	cache   map[string]*KindSet
	mu      sync.RWMutex
}

// NewLoader creates a KindSet loader rooted at baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{baseDir: baseDir, cache: make(map[string]*KindSet)}
}

// Load loads baseDir/<name>.yml, caching the result for subsequent calls.
func (l *Loader) Load(name string) (*KindSet, error) {
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\") {
		return nil, fmt.Errorf("themes: invalid theme name %q", name)
	}

	l.mu.RLock()
	if ks, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return ks, nil
	}
	l.mu.RUnlock()

	ks, err := LoadKindSetFromFile(filepath.Join(l.baseDir, name+".yml"))
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = ks
	l.mu.Unlock()
	return ks, nil
}
