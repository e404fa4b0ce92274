package cmd

import (
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/persephone/packages/mock"
	"github.com/spf13/cobra"
)

var (
	mockPortFlag    int
	mockDelayFlag   string
	mockVerboseFlag bool
)

var mockCmd = &cobra.Command{
	Use:   "mock <routes.yaml>...",
	Short: "Start a mock server from YAML route files",
	Long: `Start an HTTP mock server that answers with canned responses.

The mock server:
- Reads routes from YAML files (method, path, status, headers, body or json)
- Supports path parameters (e.g., /users/{{id}})
- Can delay responses or drop connections to exercise timeouts and network errors

Examples:
  persephone mock routes.yaml
  persephone mock routes.yaml --port 3000
  persephone mock routes.yaml --port 3000 --delay 100ms
  persephone mock api.yaml admin.yaml --verbose`,
	Args: cobra.MinimumNArgs(1),
	RunE: mockCommand,
}

func init() {
	mockCmd.Flags().IntVarP(&mockPortFlag, "port", "p", getEnvInt("PERSEPHONE_MOCK_PORT", 3000), "Port to run the mock server on (env: PERSEPHONE_MOCK_PORT)")
	mockCmd.Flags().StringVarP(&mockDelayFlag, "delay", "d", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	mockCmd.Flags().BoolVarP(&mockVerboseFlag, "verbose", "v", false, "Enable verbose logging")
}

func mockCommand(cmd *cobra.Command, args []string) error {
	var delay time.Duration
	if mockDelayFlag != "0" {
		var err error
		delay, err = time.ParseDuration(mockDelayFlag)
		if err != nil {
			return exitError(ExitUsageError, fmt.Errorf("invalid delay value %q: %w", mockDelayFlag, err))
		}
	}
	cmd.SilenceUsage = true

	server := mock.NewServer(
		mock.WithPort(mockPortFlag),
		mock.WithDelay(delay),
		mock.WithVerbose(mockVerboseFlag),
	)

	if err := server.LoadFiles(args); err != nil {
		return exitError(ExitConfigError, err)
	}

	routes := server.GetRoutes()
	if len(routes) == 0 {
		return exitError(ExitConfigError, fmt.Errorf("no routes found in the provided files"))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d routes from %d files\n", len(routes), len(args))

	ctx := cmd.Context()
	go func() {
		<-ctx.Done()
		fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down mock server...")
	}()

	return server.StartWithContext(ctx)
}
