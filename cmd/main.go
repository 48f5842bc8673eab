package main

import (
	"os"

	"github.com/librimatch/librimatch/cmd/librimatch"
)

func main() {
	if err := librimatch.Execute(); err != nil {
		os.Exit(1)
	}
}
