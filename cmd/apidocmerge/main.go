package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/kota65535/javadoc-merger-maven-plugin/cmd/apidocmerge/commands"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/version"
)

func main() {
	var cli commands.CLI
	parser := kong.Parse(&cli,
		kong.Name("apidocmerge"),
		kong.Description("Merge a Groovydoc tree into a Javadoc tree and cross-link class names."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	global := &commands.Global{Logger: slog.Default()}
	if err := parser.Run(global, &cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
