package main

import (
	"os"

	"cpfgate/cmd/cpfctl/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
