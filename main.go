package main

import (
	"fmt"
	"os"

	"github.com/martenlienen/gogs-github-mirror/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the gogs-github-mirror command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
