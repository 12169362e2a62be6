package main

import (
	"os"

	"github.com/bnema/lineserver/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
