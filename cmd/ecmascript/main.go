package main

import (
	"os"

	"github.com/go-ecmascript/ecmascript/cmd/ecmascript/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
