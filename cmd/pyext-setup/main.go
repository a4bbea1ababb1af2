package main

import (
	"os"

	"github.com/contriboss/python-extension-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
