package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

//go:embed *.json
var localeFiles embed.FS

// table maps dot keys to copy, e.g. "form.submit" -> "Pošaljite upit".
type table map[string]string

// add stores value under prefix. Objects nest with dots, lists are indexed
// ("aisajt.services.items.0.title") and also record their length under
// "<prefix>.count" for Count.
func (t table) add(prefix string, value interface{}) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}

	switch v := value.(type) {
	case map[string]interface{}:
		for k, child := range v {
			t.add(join(k), child)
		}
	case []interface{}:
		for i, child := range v {
			t.add(join(strconv.Itoa(i)), child)
		}
		t[join("count")] = strconv.Itoa(len(v))
	case string:
		t[prefix] = v
	default:
		t[prefix] = fmt.Sprint(v)
	}
}

var catalog = struct {
	sync.RWMutex
	tables map[Language]table
}{tables: make(map[Language]table)}

// Load parses the embedded locale file of every supported language. Both
// sites refuse to start with a missing table.
func Load() error {
	tables := make(map[Language]table, len(Languages()))
	for _, lang := range Languages() {
		name := lang.String() + ".json"
		raw, err := localeFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("locale %s: %w", name, err)
		}
		var doc map[string]interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("locale %s: %w", name, err)
		}
		t := make(table)
		t.add("", doc)
		tables[lang] = t
		zap.L().Debug("loaded locale", zap.String("lang", lang.String()), zap.Int("keys", len(t)))
	}

	catalog.Lock()
	catalog.tables = tables
	catalog.Unlock()
	return nil
}

// T translates key into the language carried by ctx.
func T(ctx context.Context, key string, args ...map[string]interface{}) string {
	return Translate(GetLocale(ctx), key, args...)
}

// Translate looks key up in lang, then in Primary, and returns the key
// itself when neither has it. {name} placeholders are filled from args.
func Translate(lang, key string, args ...map[string]interface{}) string {
	catalog.RLock()
	defer catalog.RUnlock()

	for _, l := range []Language{Parse(lang), Primary} {
		if text, ok := catalog.tables[l][key]; ok {
			return format(text, args...)
		}
	}
	return key
}

func format(text string, args ...map[string]interface{}) string {
	if len(args) == 0 || len(args[0]) == 0 {
		return text
	}
	pairs := make([]string, 0, 2*len(args[0]))
	for k, v := range args[0] {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

type contextKey struct{}

// WithLocale returns a copy of ctx carrying the visitor's language.
func WithLocale(ctx context.Context, lang Language) context.Context {
	return context.WithValue(ctx, contextKey{}, lang.String())
}

// GetLocale returns the language stored by WithLocale, or "sr".
func GetLocale(ctx context.Context) string {
	if lang, ok := ctx.Value(contextKey{}).(string); ok && lang != "" {
		return lang
	}
	return Primary.String()
}

// Count returns the length of a list stored under key, 0 when absent.
func Count(lang, key string) int {
	n, err := strconv.Atoi(Translate(lang, key+".count"))
	if err != nil {
		return 0
	}
	return n
}

// Languages lists the supported languages, primary first.
func Languages() []Language {
	return []Language{Primary, Secondary}
}
