package main

import (
	"os"

	"github.com/aryanrai97861/cortexhub/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
