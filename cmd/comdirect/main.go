// Command comdirect is a small CLI for the comdirect banking API: log in
// with the TAN flow, list balances and transactions, and log out again.
// It works against the real API or a local bankmock instance.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
