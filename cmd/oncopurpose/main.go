// Command oncopurpose is the local CLI: search the corpus, score evidence
// bundles, and inspect dataset statistics without a running server.
package main

import (
	"fmt"
	"os"

	"github.com/trovesx/OncoPurpose/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
