// Package config overlays environment variables onto configuration structs.
//
// Variable names follow the pattern:
//
//	{Prefix}_{COMPONENT}_{FIELD}
//
// For named nested structs, the field name becomes a path segment:
//
//	{Prefix}_{COMPONENT}_{STRUCT}_{FIELD}
//
// Anonymous (embedded) struct fields are flattened and do not add a segment.
// Go field names are converted from CamelCase to UPPER_SNAKE_CASE:
//
//	BufferSize      → BUFFER_SIZE
//	ShutdownTimeout → SHUTDOWN_TIMEOUT
//	MaxDepth        → MAX_DEPTH
//
// Supported field types: string, bool, int*, time.Duration. Fields of other
// types (functions, interfaces, pointers, floats) are skipped, so handlers
// and loggers set in code are never touched.
//
// Example with message.EngineConfig and component "engine":
//
//	MEDIATE_ENGINE_ENTRY=main
//	MEDIATE_ENGINE_CONCURRENCY=8
//	MEDIATE_ENGINE_SHUTDOWN_TIMEOUT=5s
//
// Example with expr.Config and component "expr":
//
//	MEDIATE_EXPR_MAX_DEPTH=16
//
// Values can also come from dotenv files listed in Loader.Files. The process
// environment always wins over file values.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Loader reads environment variables into configuration structs.
type Loader struct {
	// Prefix for environment variable names.
	// Default: "MEDIATE".
	Prefix string

	// Files are dotenv files read on every Load. Later files override
	// earlier ones; the process environment overrides them all.
	Files []string

	// lookup overrides os.LookupEnv for testing.
	lookup func(string) (string, bool)
}

func (l Loader) prefix() string {
	if l.Prefix == "" {
		return "MEDIATE"
	}
	return l.Prefix
}

// env returns the lookup used by one Load call.
func (l Loader) env() (func(string) (string, bool), error) {
	lookup := l.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if len(l.Files) == 0 {
		return lookup, nil
	}

	fileEnv := make(map[string]string)
	for _, f := range l.Files {
		vals, err := godotenv.Read(f)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", f, err)
		}
		for k, v := range vals {
			fileEnv[k] = v
		}
	}
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}, nil
}

// Load populates the struct pointed to by dst with values from environment
// variables. The component parameter becomes the second segment of the
// variable name.
//
// Only fields with a set variable are modified; all other fields retain
// their current values, so Load overlays the environment on top of
// defaults set in code.
func (l Loader) Load(component string, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config: dst must be a pointer to a struct, got %T", dst)
	}
	lookup, err := l.env()
	if err != nil {
		return err
	}
	for _, f := range walk(l.prefix()+"_"+normalizeComponent(component), v.Elem()) {
		raw, ok := lookup(f.key)
		if !ok {
			continue
		}
		if err := set(f.value, raw); err != nil {
			return fmt.Errorf("config: %s: %w", f.key, err)
		}
	}
	return nil
}

// Keys returns the environment variable names that [Loader.Load] would check
// for the given config struct. The dst parameter may be a struct value or a
// pointer to a struct.
func (l Loader) Keys(component string, dst any) []string {
	v := reflect.ValueOf(dst)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	fields := walk(l.prefix()+"_"+normalizeComponent(component), v)
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// Load populates dst using the default Loader with prefix "MEDIATE".
func Load(component string, dst any) error {
	return Loader{}.Load(component, dst)
}

// Keys returns env var names using the default Loader with prefix "MEDIATE".
func Keys(component string, dst any) []string {
	return Loader{}.Keys(component, dst)
}

type field struct {
	key   string
	value reflect.Value
}

// walk lists the supported fields of struct v in declaration order.
// Embedded structs are flattened, named struct fields add a path segment.
func walk(prefix string, v reflect.Value) []field {
	var fields []field
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		switch {
		case sf.Anonymous && sf.Type.Kind() == reflect.Struct:
			fields = append(fields, walk(prefix, v.Field(i))...)
		case !sf.IsExported():
		case sf.Type.Kind() == reflect.Struct:
			fields = append(fields, walk(prefix+"_"+toUpperSnake(sf.Name), v.Field(i))...)
		case supported(sf.Type.Kind()):
			fields = append(fields, field{key: prefix + "_" + toUpperSnake(sf.Name), value: v.Field(i)})
		}
	}
	return fields
}

func supported(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func set(v reflect.Value, raw string) error {
	if v.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		v.SetInt(int64(d))
		return nil
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(b)
	default:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	}
	return nil
}

// normalizeComponent uppercases a component name for use as a variable
// segment. Hyphens and spaces become underscores, other symbols are dropped.
func normalizeComponent(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return unicode.ToUpper(r)
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		case r == '-' || r == ' ':
			return '_'
		}
		return -1
	}, s)
}

// toUpperSnake converts a Go CamelCase field name to UPPER_SNAKE_CASE.
//
//	BufferSize → BUFFER_SIZE
//	URLPath    → URL_PATH
func toUpperSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
