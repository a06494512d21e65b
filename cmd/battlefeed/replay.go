package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"battlefeed/internal/chain"
	"battlefeed/internal/config"
	"battlefeed/internal/replay"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	sess, err := newSession(ctx, sessionConfig{
		Contract:      cfg.Contract,
		Wallet:        cfg.Wallet,
		Player1Anchor: cfg.Player1Anchor,
		Player2Anchor: cfg.Player2Anchor,
		Journal:       cfg.Journal,
		Errors:        cfg.Errors,
		Signals:       cfg.Signals,
		PGDSN:         cfg.PGDSN,
	}, chainID, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	var checkpoint replay.CheckpointStore
	if cfg.CheckpointEnabled {
		if sess.store != nil {
			checkpoint = &replay.DBCheckpoint{Store: sess.store, Name: fmt.Sprintf("replay:%s:%s", chainID, sess.contract.Address.Hex())}
		} else {
			checkpoint = &replay.FileCheckpoint{Path: cfg.Checkpoint}
		}
	}

	runner := replay.NewRunner(replay.RunConfig{
		FromBlock: cfg.FromBlock,
		ToBlock:   cfg.ToBlock,
		BatchSize: cfg.BatchSize,
		Retry:     replay.RetryPolicy{MaxRetries: cfg.MaxRetries, Backoff: cfg.RetryBackoff},
	}, chainClient, sess.contract, sess.dispatcher, sess.handlers.Bindings(sess.decoder), checkpoint, logger.Named("replay"))

	logger.Info("replay start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("contract", sess.contract.Address.Hex()),
		zap.String("wallet", cfg.Wallet),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	dispatched, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("replay complete",
		zap.Int("dispatched", dispatched),
		zap.Int("update_game_data", sess.ui.UpdateGameData()),
		zap.String("route", sess.ui.Route()),
	)
	return nil
}
