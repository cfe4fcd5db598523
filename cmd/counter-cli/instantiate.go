package main

import (
	"fmt"

	"github.com/govm-net/counter/types"
	"github.com/spf13/cobra"
)

var initialCount int32

var instantiateCmd = &cobra.Command{
	Use:   "instantiate",
	Short: "Create the counter with the sender as owner",
	Long: `Create the counter instance with the sender as owner.
Example: counter-cli instantiate --sender 0xc0...e1 --count 17`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := sender()
		if err != nil {
			return err
		}
		msg, err := types.Encode(types.InstantiateMsg{Count: initialCount})
		if err != nil {
			return err
		}

		engine, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer engine.Close()

		res, err := engine.Instantiate(cmd.Context(), from, msg)
		if err != nil {
			return fmt.Errorf("failed to instantiate: %w", err)
		}
		printResponse(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	instantiateCmd.Flags().Int32Var(&initialCount, "count", 0, "initial counter value")
}
