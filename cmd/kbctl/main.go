// Package main implements kbctl, an operator CLI for the knowledge base HTTP API.
package main

import (
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
