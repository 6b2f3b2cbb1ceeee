package main

import (
	"fmt"
	"os"

	"voice-minutes-service/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "minutesctl: %v\n", err)
		os.Exit(1)
	}
}
