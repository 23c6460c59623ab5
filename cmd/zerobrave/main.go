package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/cli"
)

func main() {
	os.Exit(run(os.Stderr))
}

func run(stderr io.Writer) int {
	err := cli.Execute()
	if err == nil {
		return 0
	}
	report(stderr, err)
	return cli.ExitCode(err)
}

func report(w io.Writer, err error) {
	var cliErr *cli.CLIError
	if !errors.As(err, &cliErr) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", cliErr)
	if cliErr.Hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", cliErr.Hint)
	}
}
