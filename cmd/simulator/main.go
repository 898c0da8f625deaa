// Package main is the entry point for the credit simulator CLI.
package main

import (
	"os"

	"github.com/ymakhloufi/credit-simulator/cmd/simulator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
