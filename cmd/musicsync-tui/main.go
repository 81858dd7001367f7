package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wantzavod/musicsync/internal/tui"
)

func main() {
	apiFlag := flag.String("api", "http://localhost:8080", "Base URL of the musicsync daemon")
	flag.Parse()

	if err := tui.Run(*apiFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
