// Package vars implements the scenario variable store: a JSON document
// addressed with dotted paths and used for $NAME / ${NAME} interpolation.
package vars

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	bareRef   = regexp.MustCompile(`\$(\w+)`)
	bracedRef = regexp.MustCompile(`\$\{(\w+)\}`)
)

// ErrEmptyKey is returned when a variable is set or unset with an empty path.
var ErrEmptyKey = errors.New("variable key must not be empty")

// Store holds scenario variables. Paths use gjson/sjson syntax: "user.name",
// "items.0". Safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	doc string
}

// New creates a store seeded with a copy of initial.
func New(initial map[string]interface{}) (*Store, error) {
	if initial == nil {
		return &Store{doc: "{}"}, nil
	}
	data, err := json.Marshal(initial)
	if err != nil {
		return nil, fmt.Errorf("failed to encode variables: %w", err)
	}
	return &Store{doc: string(data)}, nil
}

// FromStrings creates a store seeded from a string map, typically the process environment.
func FromStrings(initial map[string]string) *Store {
	m := make(map[string]interface{}, len(initial))
	for k, v := range initial {
		m[k] = v
	}
	// a map of strings always encodes
	s, _ := New(m)
	return s
}

// Get returns the value at key, or the first fallback (nil if none) when the
// path does not exist. Objects come back as map[string]interface{}, numbers as float64.
func (s *Store) Get(key string, fallback ...interface{}) interface{} {
	s.mu.RLock()
	res := gjson.Get(s.doc, key)
	s.mu.RUnlock()

	if !res.Exists() {
		if len(fallback) > 0 {
			return fallback[0]
		}
		return nil
	}
	return res.Value()
}

// GetString is Get rendered as interpolation would render it.
func (s *Store) GetString(key string) (string, bool) {
	s.mu.RLock()
	res := gjson.Get(s.doc, key)
	s.mu.RUnlock()

	if !res.Exists() {
		return "", false
	}
	return render(res), true
}

// Has reports whether key exists. A key set to nil exists.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return gjson.Get(s.doc, key).Exists()
}

// Set stores value at key, creating intermediate objects, and returns the previous value.
func (s *Store) Set(key string, value interface{}) (interface{}, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var old interface{}
	if prev := gjson.Get(s.doc, key); prev.Exists() {
		old = prev.Value()
	}
	doc, err := sjson.Set(s.doc, key, value)
	if err != nil {
		return nil, fmt.Errorf("failed to set variable %q: %w", key, err)
	}
	s.doc = doc
	return old, nil
}

// Unset removes key and returns the previous value.
func (s *Store) Unset(key string) (interface{}, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := gjson.Get(s.doc, key)
	if !prev.Exists() {
		return nil, nil
	}
	doc, err := sjson.Delete(s.doc, key)
	if err != nil {
		return nil, fmt.Errorf("failed to unset variable %q: %w", key, err)
	}
	s.doc = doc
	return prev.Value(), nil
}

// Interpolate replaces $NAME and then ${NAME} references with variable values.
// Unknown names are left as written.
func (s *Store) Interpolate(value string) string {
	replace := func(re *regexp.Regexp, in string) string {
		return re.ReplaceAllStringFunc(in, func(ref string) string {
			name := re.FindStringSubmatch(ref)[1]
			if v, ok := s.GetString(name); ok {
				return v
			}
			return ref
		})
	}
	return replace(bracedRef, replace(bareRef, value))
}

// Keys returns the top-level variable names, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	gjson.Parse(s.doc).ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	sort.Strings(keys)
	return keys
}

// Snapshot returns a deep copy of all variables.
func (s *Store) Snapshot() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := gjson.Parse(s.doc).Value().(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return m
}

func render(res gjson.Result) string {
	if res.Type == gjson.String {
		return res.Str
	}
	return res.Raw
}
