// Command serdegraph classifies serde types and renders their field links.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/serdegraph/internal/cli"
	errs "github.com/matzehuels/serdegraph/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	cancel()
	os.Exit(code)
}

// run executes the command line and maps the outcome to an exit status:
// 130 after an interrupt, 1 on any other failure.
func run(ctx context.Context) int {
	c := cli.New(os.Stderr, cli.LogInfo)
	err := c.RootCommand().ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	case !cli.IsReported(err):
		fmt.Fprintln(os.Stderr, "Error:", errs.UserMessage(err))
	}
	return 1
}
