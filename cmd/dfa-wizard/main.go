// dfa-wizard creates and starts data frame analytics jobs through the Kibana
// machine learning API.
//
// Build with: go build -ldflags "-X github.com/mlops-tools/dfa-wizard/internal/version.Version=v0.1.0" ./cmd/dfa-wizard
package main

import (
	"os"

	"github.com/mlops-tools/dfa-wizard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
