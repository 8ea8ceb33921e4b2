package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/duynguyendang/listmembers/pkg/common/errors"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	// Minimal logger until flags are parsed.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		appErr := errors.MapError(err)
		fmt.Fprintf(stderr, "Error: %v\n", appErr)
		return appErr.Code
	}
	return errors.ExitOK
}
