package main

import (
	"os"

	"github.com/soundprediction/hybridrag/cmd/hybridrag"
)

func main() {
	if err := hybridrag.Execute(); err != nil {
		os.Exit(1)
	}
}
