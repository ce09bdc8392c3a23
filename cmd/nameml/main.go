package main

import (
	"fmt"
	"os"

	"github.com/YuminosukeSato/nameml/cmd/nameml/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
