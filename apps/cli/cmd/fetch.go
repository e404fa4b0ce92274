package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var fetchFlags requestFlags

var fetchMethods = []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

var fetchCmd = &cobra.Command{
	Use:   "fetch <method> <url>",
	Short: "Perform a request with any method",
	Long: `Perform a request with an explicit method and report how it settled.

Examples:
  persephone fetch PUT https://api.example.com/users/1 -d '{"name":"ada"}'
  persephone fetch DELETE https://api.example.com/users/1 --error-codes 409
  persephone fetch HEAD https://api.example.com/ -o json`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: fetchMethods,
	RunE: func(cmd *cobra.Command, args []string) error {
		method, err := parseMethod(args[0])
		if err != nil {
			return exitError(ExitUsageError, err)
		}
		return fetchFlags.runCall(cmd, method, args[1])
	},
}

func init() {
	addRequestFlags(fetchCmd, &fetchFlags)
}

func parseMethod(s string) (string, error) {
	method := strings.ToUpper(strings.TrimSpace(s))
	for _, m := range fetchMethods {
		if m == method {
			return method, nil
		}
	}
	return "", fmt.Errorf("unsupported method %q (use one of %s)", s, strings.Join(fetchMethods, ", "))
}
