package main

import (
	"fmt"
	"os"

	"github.com/ndev-kit/bioimg/internal/cli"
)

// Version information - set by ldflags during build
var (
	Version = "dev"
)

func main() {
	cli.SetVersion(Version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
