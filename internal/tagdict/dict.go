// Package tagdict provides the keyword dictionary used to tag post titles.
package tagdict

import (
	"strings"
	"sync"
)

// defaultEntries is the built-in dictionary, used when no tags file is
// configured. Entries may overlap as substrings of each other ("java" and
// "javascript"); Matches reports each independently.
var defaultEntries = []string{
	"go", "rust", "python", "javascript", "typescript", "java", "c++",
	"ai", "llm", "gpt", "openai", "machine learning",
	"linux", "kubernetes", "docker", "database", "postgres", "sqlite",
	"security", "crypto", "privacy", "webassembly", "compiler",
	"react", "apple", "google", "microsoft", "github", "cloud", "api",
	"startup", "open source",
}

// Dictionary is a set of lowercase keyword entries matched against titles.
// Entries can be swapped at runtime (see Watch), so all access is guarded.
type Dictionary struct {
	mu      sync.RWMutex
	entries []string
}

// Default returns a dictionary with the built-in entry set.
func Default() *Dictionary {
	d := &Dictionary{}
	d.Replace(defaultEntries)
	return d
}

// New returns a dictionary with the given entries, normalized to lowercase
// with exact duplicates removed (first occurrence wins).
func New(entries []string) *Dictionary {
	d := &Dictionary{}
	d.Replace(entries)
	return d
}

// Replace swaps the entry set. Normalization matches New.
func (d *Dictionary) Replace(entries []string) {
	seen := make(map[string]struct{}, len(entries))
	normalized := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		normalized = append(normalized, e)
	}

	d.mu.Lock()
	d.entries = normalized
	d.mu.Unlock()
}

// Matches returns every entry that appears as a case-insensitive substring of
// title, in dictionary order. An empty result is not an error.
func (d *Dictionary) Matches(title string) []string {
	lowered := strings.ToLower(title)

	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []string
	for _, e := range d.entries {
		if strings.Contains(lowered, e) {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
