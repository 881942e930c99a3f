// Package main implements the futureview binary: the HTTP API with its
// background generation worker, database migrations and the artifact sweep.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
