// ./main.go
package main

import (
	"github.com/ehc-io/xmedia-downloader/cmd"
)

// main is the entry point for the xmedia-downloader application.
func main() {
	// Execute the root command defined in the cmd package.
	// This handles all command-line parsing, configuration, and execution.
	cmd.Execute()
}
