package main

import (
	"os"

	"github.com/glundgren93/fahrplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
