// Command markscan manages university exam results read from scanned
// marksheets.
package main

import (
	"os"

	"github.com/custodia-labs/markscan/internal/adapters/driving/cli"
)

// version is set with -ldflags "-X main.version=...".
var version = ""

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
