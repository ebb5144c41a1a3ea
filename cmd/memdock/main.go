package main

import (
	"os"

	"github.com/memdock/memdock/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
