package main

import (
	"fmt"
	"os"

	"github.com/veridict/veridict/internal/cli"
)

func main() {
	err := cli.Execute()
	if err != nil && err.Error() != "" {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.ExitCode(err))
}
