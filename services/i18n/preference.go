package i18n

import (
	"strings"
	"sync"
	"time"
)

// Language is the visitor's display language. The sites ship exactly two.
type Language string

const (
	Primary   Language = "sr"
	Secondary Language = "en"
)

// Parse normalizes a language code, mapping anything unknown to Primary.
func Parse(code string) Language {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	switch Language(code) {
	case Secondary:
		return Secondary
	default:
		return Primary
	}
}

// Toggle returns the other language.
func (l Language) Toggle() Language {
	if l == Secondary {
		return Primary
	}
	return Secondary
}

func (l Language) String() string {
	return string(l)
}

// PreferenceStore holds the current language per visitor. Reads and writes
// are single-value assignments.
type PreferenceStore interface {
	Get(visitor string) (Language, bool)
	Set(visitor string, lang Language)
}

// TogglePreference flips the stored language for a visitor and returns the new value.
// A visitor without a stored preference toggles from the language they were shown.
func TogglePreference(store PreferenceStore, visitor string, shown Language) Language {
	current, ok := store.Get(visitor)
	if !ok {
		current = Parse(shown.String())
	}
	next := current.Toggle()
	store.Set(visitor, next)
	return next
}

// MemoryStore keeps preferences for the lifetime of the process only.
// Entries not read or written for a while are dropped by Sweep.
type MemoryStore struct {
	mu    sync.Mutex
	prefs map[string]memoryEntry
}

type memoryEntry struct {
	lang     Language
	lastSeen time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Get(visitor string) (Language, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.prefs[visitor]
	if !ok {
		return "", false
	}
	e.lastSeen = time.Now()
	m.prefs[visitor] = e
	return e.lang, true
}

func (m *MemoryStore) Set(visitor string, lang Language) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[visitor] = memoryEntry{lang: lang, lastSeen: time.Now()}
}

// Forget drops a visitor's preference.
func (m *MemoryStore) Forget(visitor string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.prefs, visitor)
}

// Len returns the number of stored preferences.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prefs)
}

// Sweep drops preferences last used before now-ttl and returns how many went.
func (m *MemoryStore) Sweep(now time.Time, ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for visitor, e := range m.prefs {
		if now.Sub(e.lastSeen) > ttl {
			delete(m.prefs, visitor)
			removed++
		}
	}
	return removed
}
