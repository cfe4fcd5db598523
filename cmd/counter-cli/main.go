package main

import (
	"context"
	"fmt"
	"os"

	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/logger"
	"github.com/govm-net/counter/vm"
	"github.com/spf13/cobra"
)

var (
	configFile string
	dbPath     string
	backend    string
	arithmetic string
	senderHex  string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "counter-cli",
	Short: "Counter contract command line tool",
	Long: `Counter contract command line tool for instantiating, executing and querying
a counter contract instance kept in a local store.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "YAML config file")
	flags.StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	flags.StringVar(&backend, "backend", "", "storage backend: memory or db (overrides config)")
	flags.StringVar(&arithmetic, "arithmetic", "", "arithmetic backend: native or wasm (overrides config)")
	flags.StringVarP(&senderHex, "sender", "s", "", "hex address of the caller")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(instantiateCmd)
	rootCmd.AddCommand(executeCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(infoCmd)
}

// loadConfig reads --config if given and applies flag overrides
func loadConfig() (*vm.Config, error) {
	config := vm.DefaultConfig()
	if configFile != "" {
		var err error
		if config, err = vm.LoadConfig(configFile); err != nil {
			return nil, err
		}
	}
	if dbPath != "" {
		config.DBPath = dbPath
	}
	if backend != "" {
		config.Backend = backend
	}
	if arithmetic != "" {
		config.Arithmetic = arithmetic
	}
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	return config, nil
}

// openEngine builds the logger and engine for one command
func openEngine(ctx context.Context) (*vm.Engine, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger.SetGlobal(logger.New(config.LogLevel, logger.LogFormat(config.LogFormat)))

	engine, err := vm.NewEngine(ctx, config, logger.For("engine"))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return engine, nil
}

func sender() (core.Address, error) {
	if senderHex == "" {
		return core.ZeroAddress, fmt.Errorf("sender address is required")
	}
	return core.ParseAddress(senderHex)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
