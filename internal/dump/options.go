package dump

import (
	"fmt"
	"strings"

	"github.com/usestring/powdump/internal/filter"
)

// Options is the externally-owned render configuration. The caller
// serializes Configure against event handling; the dumper itself never
// mutates options between renders.
//
// The JSON tags match the option names operators see, so a watched
// options file uses the same vocabulary as the CLI.
type Options struct {
	// FlowDetail is the display detail level, 0 (almost quiet) to 4
	// (nothing truncated):
	//   0: no flow output at all
	//   1: request URL with response status
	//   2: 1 + headers and trailers
	//   3: 2 + truncated message content
	//   4: 3 + full message content
	FlowDetail int `json:"flow_detail"`
	// ContentView selects the body renderer by registered name.
	ContentView string `json:"dumper_default_contentview"`
	// Filter is a jq expression limiting which flows are dumped; empty
	// means every flow.
	Filter string `json:"dumper_filter"`
	// ShowHost switches URLs to their Host-header-resolved form.
	ShowHost bool `json:"showhost"`
}

// DefaultOptions returns the defaults operators get with no flags.
func DefaultOptions() Options {
	return Options{FlowDetail: 1, ContentView: "auto"}
}

// Configure validates o in full and then commits it. On error nothing
// changes: the previous options and compiled filter stay in effect, and
// the operator sees the rejection immediately.
func (d *Dumper) Configure(o Options) error {
	if o.FlowDetail < 0 || o.FlowDetail > 4 {
		return fmt.Errorf("flow_detail must be between 0 and 4, got %d", o.FlowDetail)
	}

	if o.ContentView == "" {
		o.ContentView = "auto"
	}
	if _, ok := d.views.Get(o.ContentView); !ok {
		return fmt.Errorf("unknown content view %q (registered: %s)",
			o.ContentView, strings.Join(d.views.Names(), ", "))
	}

	var m *filter.Matcher
	if o.Filter != "" {
		var err error
		m, err = filter.Compile(o.Filter)
		if err != nil {
			return fmt.Errorf("invalid filter expression %q: %w", o.Filter, err)
		}
	}

	d.opts = o
	d.matcher = m
	return nil
}

// Options returns the currently committed options.
func (d *Dumper) Options() Options {
	return d.opts
}
