// Package main is the entry point for the manchu CLI.
package main

import (
	"os"

	"github.com/f3rmion/manchu/cmd/manchu/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
