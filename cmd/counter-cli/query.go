package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <msg>",
	Short: "Query the counter",
	Long: `Run a JSON query against the counter and print the JSON answer.
Examples:
  counter-cli query '{"get_count":{}}'
  counter-cli query '{"get_reset_count":{}}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer engine.Close()

		out, err := engine.Query(cmd.Context(), []byte(args[0]))
		if err != nil {
			return fmt.Errorf("failed to query: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}
