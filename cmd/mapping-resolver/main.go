// Package main provides the CLI entrypoint for mapping-resolver.
//
// mapping-resolver merges JVM symbol mappings declared in a batch file:
//   - resolve writes the merged table
//   - bridge prints the renames between two namespaces
//   - namespaces lists the namespaces of the merged table
//   - validate checks a batch file without fetching anything
//   - presets lists the known mapping presets
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"mapping-resolver/internal/ctxlog"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			os.Exit(0)
		}

		fmt.Fprintln(os.Stderr, "mapping-resolver:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts := &Options{}

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}

	ctx = ctxlog.WithLogger(ctx, ctxlog.New(opts.LogLevel, opts.LogFormat, stderr))

	switch parser.Active.Name {
	case "resolve":
		return opts.Resolve.run(ctx, stdout)
	case "bridge":
		return opts.Bridge.run(ctx, stdout)
	case "namespaces":
		return opts.Namespaces.run(ctx, stdout)
	case "validate":
		return opts.Validate.run(ctx, stdout)
	case "presets":
		return opts.Presets.run(stdout)
	}

	return fmt.Errorf("unknown command %q", parser.Active.Name)
}
