package export

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/quotegen/internal/docstore"
)

// Key is the path a record is matched by: language/tone/topic. Patterns
// such as "Bengali/**", "*/poetic/*" or "**/Rain" select records.
func Key(r docstore.Record) string {
	return strings.Join([]string{clean(r.Language), clean(r.Tone), clean(r.Topic)}, "/")
}

// clean keeps a free-text field from introducing extra path segments.
func clean(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "/", "_")
}

// Filter selects records by include and exclude globs over Key.
type Filter struct {
	Include []string
	Exclude []string
}

// Validate checks that every pattern is well formed.
func (f Filter) Validate() error {
	for _, p := range append(append([]string(nil), f.Include...), f.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid pattern %q", p)
		}
	}
	return nil
}

// Match reports whether r is selected. An empty include list selects
// everything not excluded.
func (f Filter) Match(r docstore.Record) bool {
	key := Key(r)
	if len(f.Include) > 0 && !matchesAny(key, f.Include) {
		return false
	}
	return !matchesAny(key, f.Exclude)
}

func matchesAny(key string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, key); err == nil && matched {
			return true
		}
	}
	return false
}
