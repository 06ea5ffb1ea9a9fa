// Command blog-summarizer fills the summary placeholder of every blog post in a
// directory with a generated summary of the post body.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// Process exit codes.
const (
	exitOK = 0
	// exitConfig reports invalid flags or configuration. No document was touched.
	exitConfig = 1
	// exitFailure reports an aborted run or at least one failed document.
	exitFailure = 2
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	app := newCLIApp(stdout, stderr)
	if err := app.Run(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return exitConfig
}
