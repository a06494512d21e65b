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
	"battlefeed/internal/listener"
)

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWatch(cfgFile, cmd.Flags())
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
	if cfg.Wallet == "" {
		logger.Warn("no wallet address configured, only unconditional effects will fire")
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

	registrar := listener.NewRegistrar(chainClient, sess.dispatcher, logger.Named("listener"))
	defer registrar.Close()

	if err := sess.handlers.Register(ctx, registrar, sess.contract, sess.decoder); err != nil {
		return fmt.Errorf("install listeners: %w", err)
	}

	logger.Info("watch start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("contract", sess.contract.Address.Hex()),
		zap.String("wallet", cfg.Wallet),
		zap.String("chain_id", chainID.String()),
		zap.String("journal", cfg.Journal),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	<-ctx.Done()
	logger.Info("watch stop",
		zap.Int("update_game_data", sess.ui.UpdateGameData()),
		zap.String("route", sess.ui.Route()),
	)
	return nil
}
