// Package contentview turns message bodies into styled preview lines.
// Views are registered by name and looked up per render, so the body
// previewer never hard-codes a renderer.
package contentview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/usestring/powdump/pkg/flow"
)

// Token is one styled fragment of a preview line. Style tags are the
// renderer's vocabulary ("highlight", "offset", "header", "text");
// unknown tags render unstyled downstream.
type Token struct {
	Style string
	Text  string
}

// Line is one preview line as a sequence of tokens.
type Line []Token

// LineReader is a single-pass stream of preview lines. Implementations
// may be lazy and effectively unbounded; callers pull only what they
// intend to show, plus at most one extra line to detect truncation.
type LineReader interface {
	Next() (Line, bool)
}

// View renders one message body into a line stream.
type View interface {
	Name() string
	Render(m flow.Message, f flow.Any) (LineReader, error)
}

// Registry maps view names to implementations.
type Registry struct {
	views map[string]View
}

// NewRegistry returns a registry with the builtin views registered:
// auto, raw, hex, and json.
func NewRegistry() *Registry {
	r := &Registry{views: make(map[string]View)}
	r.Register(autoView{})
	r.Register(rawView{})
	r.Register(hexView{})
	r.Register(jsonView{})
	return r
}

// Register adds or replaces a view under its name.
func (r *Registry) Register(v View) {
	r.views[strings.ToLower(v.Name())] = v
}

// Get looks up a view by name (case-insensitive).
func (r *Registry) Get(name string) (View, bool) {
	v, ok := r.views[strings.ToLower(name)]
	return v, ok
}

// Names returns the registered view names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.views))
	for name := range r.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render looks up name and renders m. The returned label identifies the
// view that produced the lines; on error the line stream is empty and
// rendering should degrade, not abort.
func (r *Registry) Render(name string, m flow.Message, f flow.Any) (string, LineReader, error) {
	v, ok := r.Get(name)
	if !ok {
		return "", Empty(), fmt.Errorf("no content view named %q", name)
	}
	lines, err := v.Render(m, f)
	if err != nil {
		return v.Name(), Empty(), err
	}
	return v.Name(), lines, nil
}
