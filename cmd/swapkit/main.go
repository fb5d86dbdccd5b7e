package main

import (
	"os"

	"github.com/lugondev/go-swapkit/cmd/swapkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
