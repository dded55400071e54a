package main

import (
	"os"

	"github.com/launchpad-dev/launchpad/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
