package main

import (
	"os"

	"github.com/gridpool/autobid/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
