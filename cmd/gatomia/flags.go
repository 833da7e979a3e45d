// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports --workspace, --bridge, --watch, --debug, --version

package main

import "flag"

type cliArgs struct {
	workspace string
	bridge    bool
	watch     bool
	debug     bool
	version   bool
}

func parseFlags() cliArgs {
	var args cliArgs

	flag.StringVar(&args.workspace, "workspace", "", "Workspace root (defaults to the current directory)")
	flag.BoolVar(&args.bridge, "bridge", false, "Serve the JSONL bridge protocol on stdio")
	flag.BoolVar(&args.watch, "watch", false, "Watch workspace artifacts and fire completion hooks")
	flag.BoolVar(&args.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&args.version, "version", false, "Show version and exit")

	flag.Parse()
	return args
}
