// Command lorevault is the operator CLI for the LoreVault storage
// engine.
package main

import (
	"os"

	"github.com/custodia-labs/lorevault/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
