package main

import (
	"os"

	"github.com/unix-beard/pgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
