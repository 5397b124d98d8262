package main

import (
	"os"

	"crossback/cmd/crossback/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
