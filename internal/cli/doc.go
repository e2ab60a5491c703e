// Package cli implements the command-line interface for spielplan.
//
// The root command runs a full export: it loads the configuration, fetches
// every configured team and writes the export files, manifest and index.html.
// The index subcommand only regenerates index.html from the output directory.
package cli
