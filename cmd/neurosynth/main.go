// Command neurosynth serves the Neurosynth query API and runs term searches
// from the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}
