// Package config loads camtune options from a TOML file, CAMTUNE_ environment
// variables and command line flags, and watches the file for changes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every env tag.
const EnvPrefix = "CAMTUNE_"

// LoadConfig fills opts, a pointer to a struct, with precedence
// CLI flags > env vars > config file > existing values.
//
// Fields are mapped by tags: `toml:"section.key"` and `env:"KEY"` (read as
// CAMTUNE_KEY). The file path is taken from a string field named Config; a
// missing file is not an error. Fields whose flag was set on cmd are left
// untouched. Values that do not fit the field type are ignored.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config: want pointer to struct, got %T", opts)
	}
	v = v.Elem()

	doc, err := readDocument(configPath(v))
	if err != nil {
		return err
	}
	pinned := changedFlags(cmd)

	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || pinned[fieldNameToFlag(f.Name)] {
			continue
		}
		if key := f.Tag.Get("toml"); key != "" {
			if value, ok := lookupPath(doc, key); ok {
				assign(v.Field(i), value)
			}
		}
		if key := f.Tag.Get("env"); key != "" {
			if value := os.Getenv(EnvPrefix + key); value != "" {
				assign(v.Field(i), value)
			}
		}
	}
	return nil
}

// readDocument decodes the TOML file at path into a generic tree. An empty
// path or a missing file yields an empty tree.
func readDocument(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return doc, nil
}

func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := make(map[string]bool)
	if cmd == nil {
		return changed
	}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		changed[f.Name] = true
	})
	return changed
}

func configPath(v reflect.Value) string {
	f := v.FieldByName("Config")
	if !f.IsValid() || f.Kind() != reflect.String {
		return ""
	}
	return f.String()
}

// fieldNameToFlag converts a struct field name to the flag humacli derives
// from it: "LoggingLevel" -> "logging-level", "LoggingAPI" -> "logging-api".
func fieldNameToFlag(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := !unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('-')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// lookupPath follows a dotted key through nested tables.
func lookupPath(doc map[string]any, path string) (any, bool) {
	keys := strings.Split(path, ".")
	table := doc
	for _, key := range keys[:len(keys)-1] {
		next, ok := table[key].(map[string]any)
		if !ok {
			return nil, false
		}
		table = next
	}
	value, ok := table[keys[len(keys)-1]]
	return value, ok
}

// assign stores value in field. value is either a decoded TOML value or a
// string from the environment, which is parsed for the field's kind; string
// slices come from a TOML array or a comma separated list. It reports whether
// the field was set.
func assign(field reflect.Value, value any) bool {
	if !field.CanSet() {
		return false
	}
	s, isString := value.(string)

	switch field.Kind() {
	case reflect.String:
		if isString {
			field.SetString(s)
			return true
		}
	case reflect.Bool:
		b, ok := value.(bool)
		if isString {
			var err error
			b, err = strconv.ParseBool(s)
			ok = err == nil
		}
		if ok {
			field.SetBool(b)
			return true
		}
	case reflect.Int, reflect.Int64:
		n, ok := toInt(value)
		if ok {
			field.SetInt(n)
			return true
		}
	case reflect.Float64:
		f, ok := toFloat(value)
		if ok {
			field.SetFloat(f)
			return true
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return false
		}
		items, ok := toStrings(value)
		if ok {
			field.Set(reflect.ValueOf(items))
			return true
		}
	}
	return false
}

func toInt(value any) (int64, bool) {
	switch n := value.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toStrings(value any) ([]string, bool) {
	switch v := value.(type) {
	case string:
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}
