// Package main is the entry point for the sitectl admin tool.
package main

import (
	"os"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/cmd/sitectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
