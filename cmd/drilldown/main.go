package main

import (
	"os"

	"github.com/aerissecure/drilldown/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
