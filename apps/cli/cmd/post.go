package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var postFlags requestFlags

var postCmd = &cobra.Command{
	Use:   "post <url>",
	Short: "Perform a POST request",
	Long: `Perform a POST request and report how it settled. Bodies that parse as
JSON are sent with a JSON content type unless one is given.

Examples:
  persephone post https://api.example.com/users -d '{"name":"ada"}'
  persephone post https://api.example.com/upload -d @payload.json -H "Authorization: Bearer {{TOKEN}}"
  persephone post https://api.example.com/users -d '{}' --schema user.schema.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return postFlags.runCall(cmd, http.MethodPost, args[0])
	},
}

func init() {
	addRequestFlags(postCmd, &postFlags)
}
