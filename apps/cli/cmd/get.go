package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var getFlags requestFlags

var getCmd = &cobra.Command{
	Use:   "get <url>",
	Short: "Perform a GET request",
	Long: `Perform a GET request and report how it settled.

Examples:
  persephone get https://api.example.com/users/1
  persephone get /users/1 --base-url https://api.example.com
  persephone get https://api.example.com/users --query "data.#" --query header.X-Total
  persephone get https://api.example.com/health --whitelist 503 --timeout 2s
  persephone get https://api.example.com/users/{{USER_ID}} --env-file .env`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getFlags.runCall(cmd, http.MethodGet, args[0])
	},
}

func init() {
	addRequestFlags(getCmd, &getFlags)
}
