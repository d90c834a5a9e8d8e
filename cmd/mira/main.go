package main

import (
	"os"

	"github.com/harun/mira/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
