// Command scheduler assigns conference sessions to rooms and time slots,
// validates the resulting grid, and exports it.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
