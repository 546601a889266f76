// Package main is the entry point for the acparse command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/amoeba/ac-pcap-parser/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
