package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"battlefeed/internal/game"
	"battlefeed/internal/handler"
	"battlefeed/internal/listener"
	"battlefeed/internal/storage"
	"battlefeed/internal/storage/postgres"
	"battlefeed/internal/ui"
)

// sessionConfig is the subset of settings shared by watch and replay.
type sessionConfig struct {
	Contract      string
	Wallet        string
	Player1Anchor string
	Player2Anchor string
	Journal       string
	Errors        string
	Signals       string
	PGDSN         string
}

// session bundles the contract binding, UI context and sinks of one run.
type session struct {
	contract   *game.Contract
	decoder    *game.Decoder
	ui         *ui.Context
	handlers   *handler.Handlers
	dispatcher *listener.Dispatcher
	store      *postgres.Store
}

func newSession(ctx context.Context, cfg sessionConfig, chainID *big.Int, logger *zap.Logger) (*session, error) {
	if !common.IsHexAddress(cfg.Contract) {
		return nil, fmt.Errorf("invalid contract address: %q", cfg.Contract)
	}
	wallet := cfg.Wallet
	if wallet != "" {
		if !common.IsHexAddress(wallet) {
			return nil, fmt.Errorf("invalid wallet address: %q", wallet)
		}
		// Decoded event addresses are checksummed.
		wallet = common.HexToAddress(wallet).Hex()
	}

	contract, err := game.NewContract(common.HexToAddress(cfg.Contract))
	if err != nil {
		return nil, err
	}

	player1, err := ui.ParseAnchor(cfg.Player1Anchor)
	if err != nil {
		return nil, fmt.Errorf("player1 anchor: %w", err)
	}
	player2, err := ui.ParseAnchor(cfg.Player2Anchor)
	if err != nil {
		return nil, fmt.Errorf("player2 anchor: %w", err)
	}

	var signalSink storage.SignalSink
	if cfg.Signals != "" {
		signalSink = storage.NewJsonlStorage(cfg.Signals)
	}

	uiCtx := ui.NewContext(ui.Config{
		WalletAddress: wallet,
		Player1:       player1,
		Player2:       player2,
		Shell:         ui.NewLogShell(logger.Named("ui"), signalSink),
	})

	s := &session{
		contract: contract,
		decoder:  game.NewDecoder(contract),
		ui:       uiCtx,
		handlers: handler.New(uiCtx, logger.Named("handler")),
	}

	dispatchCfg := listener.DispatcherConfig{}
	if chainID != nil && chainID.IsUint64() {
		dispatchCfg.ChainID = chainID.Uint64()
	}
	if cfg.Errors != "" {
		dispatchCfg.Errors = storage.NewJsonlStorage(cfg.Errors)
	}
	switch {
	case cfg.PGDSN != "":
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.store = store
		dispatchCfg.Journal = store
	case cfg.Journal != "":
		dispatchCfg.Journal = storage.NewJsonlStorage(cfg.Journal)
	}
	s.dispatcher = listener.NewDispatcher(dispatchCfg, logger.Named("dispatch"))

	return s, nil
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
