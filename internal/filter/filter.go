// Package filter compiles jq expressions into flow predicates. An
// expression runs against a flat JSON document derived from the flow
// (.type, .method, .url, .status, ...) and matches when it emits at
// least one value that is neither null nor false.
package filter

import (
	"errors"
	"fmt"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/itchyny/gojq"

	"github.com/usestring/powdump/pkg/flow"
	"github.com/usestring/powdump/pkg/human"
)

// Matcher is a compiled flow predicate.
type Matcher struct {
	expr string
	code *gojq.Code
}

// Operators tend to flip between a handful of expressions; memoizing
// compiled programs keeps repeated Configure calls cheap.
var compiled, _ = lru.New[string, *gojq.Code](64)

// Compile parses and compiles a jq filter expression.
func Compile(expr string) (*Matcher, error) {
	if code, ok := compiled.Get(expr); ok {
		return &Matcher{expr: expr, code: code}, nil
	}

	query, err := gojq.Parse(expr)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("parse error at offset %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("parse error: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}

	compiled.Add(expr, code)
	return &Matcher{expr: expr, code: code}, nil
}

// String returns the source expression.
func (m *Matcher) String() string { return m.expr }

// Match evaluates the predicate against f. Runtime errors from the jq
// program are skipped rather than treated as matches.
func (m *Matcher) Match(f flow.Any) bool {
	iter := m.code.Run(Document(f))
	for {
		v, ok := iter.Next()
		if !ok {
			return false
		}
		if _, isErr := v.(error); isErr {
			continue
		}
		if v == nil || v == false {
			continue
		}
		return true
	}
}

// Document flattens a flow into the JSON shape filter expressions see.
func Document(f flow.Any) map[string]any {
	doc := map[string]any{"type": f.Kind()}

	fill := func(b *flow.Base) {
		doc["client"] = human.FormatAddress(b.ClientPeer())
		doc["server"] = human.FormatAddress(b.ServerAddress())
		doc["replay"] = b.Replay
		meta := map[string]any{}
		for k, v := range b.Metadata {
			meta[k] = v
		}
		doc["metadata"] = meta
	}

	switch t := f.(type) {
	case *flow.HTTPFlow:
		fill(&t.Base)
		if t.Request != nil {
			doc["method"] = t.Request.Method
			doc["url"] = t.Request.URL
			if u, err := url.Parse(t.Request.URL); err == nil {
				doc["host"] = u.Hostname()
				doc["path"] = u.Path
				doc["scheme"] = u.Scheme
			}
		}
		if t.Response != nil {
			doc["status"] = t.Response.StatusCode
		}
		if t.Error != nil {
			doc["error"] = t.Error.Msg
		}
	case *flow.WebSocketFlow:
		fill(&t.Base)
		doc["messages"] = len(t.Messages)
		if t.Error != nil {
			doc["error"] = t.Error.Msg
		}
	case *flow.TCPFlow:
		fill(&t.Base)
		doc["messages"] = len(t.Messages)
		if t.Error != nil {
			doc["error"] = t.Error.Msg
		}
	}

	return doc
}
