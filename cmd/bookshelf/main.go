// Package main is the entry point for the bookshelf CLI binary.
package main

import (
	"os"

	"github.com/mbrus062/bookshelf-operator/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
