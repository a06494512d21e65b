package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "battlefeed",
		Short:        "Battle game contract event listener",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Listen for live game events",
		RunE:  runWatch,
	}

	watchCmd.Flags().String("rpc", "", "websocket RPC URL")
	watchCmd.Flags().String("contract", "", "game contract address")
	watchCmd.Flags().String("wallet", "", "session wallet address")
	watchCmd.Flags().String("player1-anchor", "", "player 1 card rect (left,top,width,height)")
	watchCmd.Flags().String("player2-anchor", "", "player 2 card rect (left,top,width,height)")
	watchCmd.Flags().String("journal", "", "event journal JSONL path (empty disables)")
	watchCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL path (empty disables)")
	watchCmd.Flags().String("signals", "", "UI signals JSONL path (empty disables)")
	watchCmd.Flags().String("pg-dsn", "", "Postgres DSN for the event journal")
	watchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(watchCmd)

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay historical game events through the listeners",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("rpc", "", "RPC URL")
	replayCmd.Flags().String("contract", "", "game contract address")
	replayCmd.Flags().String("wallet", "", "session wallet address")
	replayCmd.Flags().String("player1-anchor", "", "player 1 card rect (left,top,width,height)")
	replayCmd.Flags().String("player2-anchor", "", "player 2 card rect (left,top,width,height)")
	replayCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	replayCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	replayCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	replayCmd.Flags().String("checkpoint", "./data/replay_checkpoint.json", "checkpoint file path")
	replayCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	replayCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	replayCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	replayCmd.Flags().String("journal", "", "event journal JSONL path (empty disables)")
	replayCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL path (empty disables)")
	replayCmd.Flags().String("signals", "", "UI signals JSONL path (empty disables)")
	replayCmd.Flags().String("pg-dsn", "", "Postgres DSN for the event journal and checkpoint")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

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
