package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var executeCmd = &cobra.Command{
	Use:   "execute <msg>",
	Short: "Execute a message against the counter",
	Long: `Execute a JSON message against the counter on behalf of the sender.
Examples:
  counter-cli execute -s 0xa0...e2 '{"increment":{}}'
  counter-cli execute -s 0xa0...e2 '{"decrement":{"amount":5}}'
  counter-cli execute -s 0xc0...e1 '{"reset":{"count":3}}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := sender()
		if err != nil {
			return err
		}

		engine, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer engine.Close()

		res, err := engine.Execute(cmd.Context(), from, []byte(args[0]))
		if err != nil {
			return fmt.Errorf("failed to execute: %w", err)
		}
		printResponse(cmd.OutOrStdout(), res)
		return nil
	},
}
