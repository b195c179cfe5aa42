// Command bankmock runs the mock comdirect API server.
package main

import (
	"fmt"
	"os"

	"github.com/ledgerlane/comdirect/internal/mockbank/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize mock bank: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "mock bank exited with error: %v\n", err)
		os.Exit(1)
	}
}
