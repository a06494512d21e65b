// Package handler maps decoded game events onto UI context changes.
package handler

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"battlefeed/internal/game"
	"battlefeed/internal/listener"
	"battlefeed/internal/model"
	"battlefeed/internal/ui"
)

const (
	RouteCreateBattle = "/create-battle"

	msgPlayerRegistered = "Player has been successfully registered"
	msgTokenGenerated   = "Player game token has been successfully generated"
	msgWon              = "You Won!"
	msgLost             = "You Lost!"
)

// BattleRoute returns the battle view route for a battle name.
func BattleRoute(battleName string) string {
	return "/battle/" + battleName
}

// Handlers reacts to game events on behalf of the session wallet.
type Handlers struct {
	ui     *ui.Context
	logger *zap.Logger
}

func New(uiCtx *ui.Context, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{ui: uiCtx, logger: logger}
}

// Dispatch routes an event to its handler.
func (h *Handlers) Dispatch(event model.Event) {
	switch ev := event.(type) {
	case model.NewPlayerEvent:
		h.OnNewPlayer(ev)
	case model.NewBattleEvent:
		h.OnNewBattle(ev)
	case model.NewGameTokenEvent:
		h.OnNewGameToken(ev)
	case model.BattleMoveEvent:
		h.OnBattleMove(ev)
	case model.RoundEndedEvent:
		h.OnRoundEnded(ev)
	case model.BattleEndedEvent:
		h.OnBattleEnded(ev)
	default:
		h.logger.Warn("unhandled event", zap.String("type", fmt.Sprintf("%T", event)))
	}
}

// Bindings returns one binding per event kind, decoding with decoder.
func (h *Handlers) Bindings(decoder *game.Decoder) []listener.Binding {
	kinds := model.AllKinds()
	bindings := make([]listener.Binding, 0, len(kinds))
	for _, kind := range kinds {
		bindings = append(bindings, listener.Binding{
			Kind:   kind,
			Decode: decoder.For(kind),
			Handle: h.Dispatch,
		})
	}
	return bindings
}

// Register installs the six game listeners on registrar.
func (h *Handlers) Register(ctx context.Context, registrar *listener.Registrar, contract *game.Contract, decoder *game.Decoder) error {
	return registrar.InstallAll(ctx, contract, h.Bindings(decoder))
}

func (h *Handlers) OnNewPlayer(ev model.NewPlayerEvent) {
	if sameExact(h.ui.WalletAddress(), ev.Owner) {
		h.ui.SetShowAlert(model.Alert{Status: true, Type: model.AlertSuccess, Message: msgPlayerRegistered})
	}
}

func (h *Handlers) OnNewBattle(ev model.NewBattleEvent) {
	wallet := h.ui.WalletAddress()
	if sameFold(wallet, ev.Player1) || sameFold(wallet, ev.Player2) {
		h.ui.Navigate(BattleRoute(ev.BattleName))
	}
	h.ui.BumpUpdateGameData()
}

func (h *Handlers) OnNewGameToken(ev model.NewGameTokenEvent) {
	if sameFold(h.ui.WalletAddress(), ev.Owner) {
		h.ui.SetShowAlert(model.Alert{Status: true, Type: model.AlertSuccess, Message: msgTokenGenerated})
		h.ui.Navigate(RouteCreateBattle)
	}
}

func (h *Handlers) OnBattleMove(ev model.BattleMoveEvent) {
	h.logger.Debug("battle moved",
		zap.String("battle_name_hash", ev.BattleNameHash),
		zap.Bool("is_first_move", ev.IsFirstMove),
	)
}

// OnRoundEnded assumes a two-player battle: any damaged address other than the
// session wallet is drawn at the opponent's anchor.
func (h *Handlers) OnRoundEnded(ev model.RoundEndedEvent) {
	wallet := h.ui.WalletAddress()
	for _, player := range ev.DamagedPlayers {
		switch {
		case player == model.EmptyAccount:
			h.ui.PlayAudio(ui.DefenseSound)
		case sameExact(wallet, player):
			h.sparkle(h.ui.Player1Ref(), "player1")
		default:
			h.sparkle(h.ui.Player2Ref(), "player2")
		}
	}
	h.ui.BumpUpdateGameData()
}

func (h *Handlers) OnBattleEnded(ev model.BattleEndedEvent) {
	wallet := h.ui.WalletAddress()
	h.logger.Debug("battle ended",
		zap.String("battle_name", ev.BattleName),
		zap.String("winner", ev.Winner),
		zap.String("loser", ev.Loser),
		zap.String("wallet", wallet),
	)

	switch {
	case sameFold(wallet, ev.Winner):
		h.ui.SetShowAlert(model.Alert{Status: true, Type: model.AlertSuccess, Message: msgWon})
	case sameFold(wallet, ev.Loser):
		h.ui.SetShowAlert(model.Alert{Status: true, Type: model.AlertFailure, Message: msgLost})
	}
	h.ui.Navigate(RouteCreateBattle)
}

func (h *Handlers) sparkle(anchor ui.Anchor, name string) {
	rect, err := anchor.BoundingRect()
	if err != nil {
		h.logger.Warn("skip damage effect", zap.String("anchor", name), zap.Error(err))
		return
	}
	h.ui.Sparkle(Coords(rect))
}

// An empty session address never matches.
func sameExact(wallet, address string) bool {
	return wallet != "" && wallet == address
}

func sameFold(wallet, address string) bool {
	return wallet != "" && strings.EqualFold(wallet, address)
}
