package main

import (
	"fmt"
	"os"

	"rabbit-bot/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rabbit-bot:", err)
		os.Exit(1)
	}
}
