package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "txflow",
		Short:        "Ethereum transaction flow decoder",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	decodeCmd := &cobra.Command{
		Use:   "decode <tx-hash> [tx-hash...]",
		Short: "Decode transactions into ordered financial flows",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDecode,
	}

	decodeCmd.Flags().StringSlice("rpc", nil, "Ethereum RPC URLs, tried in order (comma-separated)")
	decodeCmd.Flags().String("out", "./data/flows.jsonl", "output flows JSONL path")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL path")
	decodeCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for flow persistence")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
