// Command powdump renders captured flow lifecycle events as colorized
// terminal lines. It reads JSONL events from a file or stdin, gates
// each flow through the configured detail level and filter, and writes
// summaries to stdout and error notices to stderr.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/usestring/powdump/internal/config"
	"github.com/usestring/powdump/internal/dump"
	"github.com/usestring/powdump/internal/eventstream"
	"github.com/usestring/powdump/internal/logging"
	"github.com/usestring/powdump/internal/watch"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := dump.DefaultOptions()
	var optionsPath string

	cmd := &cobra.Command{
		Use:   "powdump [events-file]",
		Short: "Render captured flow events as colorized terminal lines",
		Long: `Powdump is the human-readable surface of a capture pipeline: it
consumes a JSON-lines stream of flow lifecycle events (HTTP exchanges,
WebSocket messages, raw TCP segments, and their errors) and prints
verbosity-controlled, colorized summaries.

Detail levels: 0 almost quiet, 1 request URL with response status,
2 adds headers, 3 adds truncated bodies, 4 truncates nothing.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := run(opts, optionsPath, args); err != nil {
				fmt.Fprintln(os.Stderr, "powdump:", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.FlowDetail, "flow-detail", "d", opts.FlowDetail,
		"display detail level for flows, 0 (almost quiet) to 4 (nothing truncated)")
	cmd.Flags().StringVarP(&opts.Filter, "dumper-filter", "f", "",
		"jq expression limiting which flows are dumped")
	cmd.Flags().StringVar(&opts.ContentView, "contentview", opts.ContentView,
		"default content view for message bodies")
	cmd.Flags().BoolVar(&opts.ShowHost, "showhost", false,
		"use the Host header to construct URLs for display")
	cmd.Flags().StringVar(&optionsPath, "options", "",
		"JSON options file to watch for live updates")
	return cmd
}

func run(opts dump.Options, optionsPath string, args []string) error {
	cfg := config.Load()

	cleanup, err := logging.Setup(logging.Config{
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer cleanup()

	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	d := dump.New(os.Stdout, os.Stderr)
	if cfg.TerminalWidth > 0 {
		d.SetTerminalWidth(func() int { return cfg.TerminalWidth })
	}
	if err := d.Configure(opts); err != nil {
		return err
	}

	var changes <-chan struct{}
	if optionsPath != "" {
		w, err := watch.New(optionsPath)
		if err != nil {
			return fmt.Errorf("watching options file: %w", err)
		}
		defer w.Close()
		changes = w.Changes()
		if err := applyOptionsFile(d, optionsPath); err != nil {
			fmt.Fprintln(os.Stderr, "powdump:", err)
		}
	}

	events := eventstream.NewReader(in)
	for {
		// Option updates apply between events only, never mid-render.
		select {
		case <-changes:
			if err := applyOptionsFile(d, optionsPath); err != nil {
				fmt.Fprintln(os.Stderr, "powdump:", err)
			}
		default:
		}

		ev, err := events.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading events: %w", err)
		}
		if err := eventstream.Dispatch(d, ev); err != nil {
			slog.Debug("skipping event", "error", err)
		}
	}
}

// applyOptionsFile merges the options file over the current options and
// configures the dumper. A rejected update leaves everything as it was.
func applyOptionsFile(d *dump.Dumper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading options file: %w", err)
	}
	opts := d.Options()
	if err := json.Unmarshal(data, &opts); err != nil {
		return fmt.Errorf("parsing options file: %w", err)
	}
	if err := d.Configure(opts); err != nil {
		return fmt.Errorf("options update rejected: %w", err)
	}
	slog.Info("options updated",
		"flow_detail", opts.FlowDetail,
		"contentview", opts.ContentView,
		"filter", opts.Filter)
	return nil
}
