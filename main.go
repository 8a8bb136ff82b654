package main

import (
	"os"

	"github.com/beaufortfrancois/templates/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
