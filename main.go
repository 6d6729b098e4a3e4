package main

import (
	"os"

	"github.com/ovrim/windcurb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
