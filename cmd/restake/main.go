package main

import (
	"os"

	"github.com/restakehq/restake-agent/internal/app"
)

func main() {
	runner := app.NewRunner()
	os.Exit(runner.Run(os.Args[1:]))
}
