package main

import (
	"os"

	"github.com/grovetools/agtail/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
