package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/carlosfiori/integrador-apis/internal/apperrors"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code. The report
// goes to stdout; usage, diagnostics and logs go to stderr.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		var usageErr apperrors.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "\n%s\n", usageErr.Message)
		} else {
			fmt.Fprintf(stderr, "\n[ERRO] %v\n", err)
		}
	}
	return apperrors.ExitCode(err)
}
