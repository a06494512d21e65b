package ui

import (
	"sync"
	"time"

	"battlefeed/internal/model"
)

// DefenseSound is played when a round ends with a player taking no damage.
const DefenseSound = "defense"

// Shell receives every UI signal produced through a Context.
type Shell interface {
	Emit(signal model.Signal)
}

// Config configures a Context.
type Config struct {
	WalletAddress string
	Player1       Anchor
	Player2       Anchor
	Shell         Shell
}

// Context is the shared UI state mutated by event handlers.
type Context struct {
	mu             sync.Mutex
	walletAddress  string
	alert          model.Alert
	route          string
	updateGameData int
	player1        Anchor
	player2        Anchor
	shell          Shell
	now            func() time.Time
}

func NewContext(cfg Config) *Context {
	player1, player2 := cfg.Player1, cfg.Player2
	if player1 == nil {
		player1 = UnmountedAnchor{}
	}
	if player2 == nil {
		player2 = UnmountedAnchor{}
	}
	return &Context{
		walletAddress: cfg.WalletAddress,
		player1:       player1,
		player2:       player2,
		shell:         cfg.Shell,
		now:           time.Now,
	}
}

// WalletAddress returns the session address, or "" when no wallet is connected.
func (c *Context) WalletAddress() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.walletAddress
}

func (c *Context) SetWalletAddress(address string) {
	c.mu.Lock()
	c.walletAddress = address
	c.mu.Unlock()
}

func (c *Context) Alert() model.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alert
}

func (c *Context) Route() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.route
}

func (c *Context) UpdateGameData() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateGameData
}

func (c *Context) Player1Ref() Anchor { return c.player1 }
func (c *Context) Player2Ref() Anchor { return c.player2 }

// SetShowAlert replaces the current alert.
func (c *Context) SetShowAlert(alert model.Alert) {
	c.mu.Lock()
	c.alert = alert
	c.mu.Unlock()
	a := alert
	c.emit(model.Signal{Kind: model.SignalAlert, Alert: &a})
}

// Navigate changes the current route.
func (c *Context) Navigate(route string) {
	c.mu.Lock()
	c.route = route
	c.mu.Unlock()
	c.emit(model.Signal{Kind: model.SignalNavigate, Route: route})
}

// BumpUpdateGameData increments the game-data refresh counter and returns the new value.
func (c *Context) BumpUpdateGameData() int {
	c.mu.Lock()
	c.updateGameData++
	n := c.updateGameData
	c.mu.Unlock()
	c.emit(model.Signal{Kind: model.SignalRefresh, Counter: n})
	return n
}

// Sparkle triggers a damage effect at a page point.
func (c *Context) Sparkle(point model.Point) {
	p := point
	c.emit(model.Signal{Kind: model.SignalSparkle, Point: &p})
}

// PlayAudio triggers a named sound.
func (c *Context) PlayAudio(sound string) {
	c.emit(model.Signal{Kind: model.SignalSound, Sound: sound})
}

func (c *Context) emit(signal model.Signal) {
	if c.shell == nil {
		return
	}
	signal.At = c.now().UTC().Format(time.RFC3339Nano)
	c.shell.Emit(signal)
}
