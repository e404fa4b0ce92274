package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "persephone",
	Short: "HTTP calls that settle exactly once.",
	Long: `persephone performs HTTP calls and classifies every outcome: a response
with a non-failing status resolves, anything else rejects with a typed error
(NetworkError, TimeoutError, AbortError, StatusZero, InvalidStatus).

Which status codes count as failures is configurable per call, per config
file or through PERSEPHONE_* environment variables.`,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt

	// Interrupts cancel the command context; in-flight calls settle as AbortError.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := exitCode(os.Stderr, rootCmd.ExecuteContext(ctx))
	stop()
	os.Exit(code)
}

// exitCode reports err on w and returns the process exit status for it.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(w, "Error:", exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintln(w, "Error:", err)
	return ExitUsageError
}

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(versionCmd)
}
