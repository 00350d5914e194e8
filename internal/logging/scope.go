package logging

import (
	"log/slog"
	"slices"
	"strings"
)

// scope is the state shared by the journal and buffer handlers: a level and
// the attributes and groups added through With and WithGroup.
type scope struct {
	level  slog.Leveler
	attrs  []groupedAttr
	groups []string
}

// groupedAttr remembers the groups that were open when the attribute was
// added, so a later WithGroup does not move it.
type groupedAttr struct {
	groups []string
	attr   slog.Attr
}

func (s scope) enabled(level slog.Level) bool {
	return level >= s.level.Level()
}

func (s scope) withAttrs(attrs []slog.Attr) scope {
	out := s
	out.attrs = slices.Clone(s.attrs)
	for _, a := range attrs {
		out.attrs = append(out.attrs, groupedAttr{groups: s.groups, attr: a})
	}
	return out
}

func (s scope) withGroup(name string) scope {
	if name == "" {
		return s
	}
	out := s
	out.groups = append(slices.Clone(s.groups), name)
	return out
}

// each calls fn for every leaf attribute of the scope and of r, with the
// group path it lives under.
func (s scope) each(r slog.Record, fn func(path []string, a slog.Attr)) {
	for _, ga := range s.attrs {
		visitAttr(ga.groups, ga.attr, fn)
	}
	r.Attrs(func(a slog.Attr) bool {
		visitAttr(s.groups, a, fn)
		return true
	})
}

func visitAttr(path []string, a slog.Attr, fn func([]string, slog.Attr)) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() != slog.KindGroup {
		fn(path, a)
		return
	}
	// An empty group key inlines its members.
	if a.Key != "" {
		path = append(slices.Clone(path), a.Key)
	}
	for _, member := range a.Value.Group() {
		visitAttr(path, member, fn)
	}
}

func joinKey(path []string, key, sep string) string {
	if len(path) == 0 {
		return key
	}
	return strings.Join(path, sep) + sep + key
}

// levelToString converts slog.Level to a lowercase string.
func levelToString(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
