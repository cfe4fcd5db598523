package main

import (
	"errors"
	"strconv"

	"github.com/govm-net/counter/core"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the contract instance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer engine.Close()

		out := cmd.OutOrStdout()
		rows := [][2]string{
			{"contract_address", engine.Contract().String()},
			{"lifecycle", engine.LifecycleState()},
		}

		info, err := engine.ContractInfo(cmd.Context())
		switch {
		case err == nil:
			rows = append(rows, [2]string{"contract", info.Contract}, [2]string{"version", info.Version})
		case !errors.Is(err, core.ErrNotFound):
			return err
		}

		state, err := engine.State(cmd.Context())
		switch {
		case err == nil:
			rows = append(rows,
				[2]string{"owner", state.Owner.String()},
				[2]string{"count", strconv.FormatInt(int64(state.Count), 10)},
				[2]string{"reset_count", strconv.FormatInt(int64(state.ResetCount), 10)})
		case !errors.Is(err, core.ErrNotFound):
			return err
		}

		printRows(out, rows)
		return nil
	},
}
