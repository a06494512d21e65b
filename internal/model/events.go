package model

// EventKind names one of the game contract events.
type EventKind string

const (
	KindNewPlayer    EventKind = "NewPlayer"
	KindNewBattle    EventKind = "NewBattle"
	KindNewGameToken EventKind = "NewGameToken"
	KindBattleMove   EventKind = "BattleMove"
	KindRoundEnded   EventKind = "RoundEnded"
	KindBattleEnded  EventKind = "BattleEnded"
)

// EmptyAccount is the zero address the contract emits for a player that took no damage.
const EmptyAccount = "0x0000000000000000000000000000000000000000"

// AllKinds returns every event kind in contract declaration order.
func AllKinds() []EventKind {
	return []EventKind{
		KindNewPlayer,
		KindNewBattle,
		KindNewGameToken,
		KindBattleMove,
		KindRoundEnded,
		KindBattleEnded,
	}
}

// Event is a decoded game contract event. The set of implementations is closed.
type Event interface {
	Kind() EventKind
	isEvent()
}

// NewPlayerEvent is the decoded NewPlayer event payload.
type NewPlayerEvent struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// NewBattleEvent is the decoded NewBattle event payload.
type NewBattleEvent struct {
	BattleName string `json:"battle_name"`
	Player1    string `json:"player1"`
	Player2    string `json:"player2"`
}

// NewGameTokenEvent is the decoded NewGameToken event payload.
type NewGameTokenEvent struct {
	Owner           string `json:"owner"`
	ID              string `json:"id"`
	AttackStrength  string `json:"attack_strength"`
	DefenseStrength string `json:"defense_strength"`
}

// BattleMoveEvent is the decoded BattleMove event payload. The battle name is
// an indexed string, so only its keccak256 hash is available.
type BattleMoveEvent struct {
	BattleNameHash string `json:"battle_name_hash"`
	IsFirstMove    bool   `json:"is_first_move"`
}

// RoundEndedEvent is the decoded RoundEnded event payload.
type RoundEndedEvent struct {
	DamagedPlayers []string `json:"damaged_players"`
}

// BattleEndedEvent is the decoded BattleEnded event payload.
type BattleEndedEvent struct {
	BattleName string `json:"battle_name"`
	Winner     string `json:"winner"`
	Loser      string `json:"loser"`
}

func (NewPlayerEvent) Kind() EventKind    { return KindNewPlayer }
func (NewBattleEvent) Kind() EventKind    { return KindNewBattle }
func (NewGameTokenEvent) Kind() EventKind { return KindNewGameToken }
func (BattleMoveEvent) Kind() EventKind   { return KindBattleMove }
func (RoundEndedEvent) Kind() EventKind   { return KindRoundEnded }
func (BattleEndedEvent) Kind() EventKind  { return KindBattleEnded }

func (NewPlayerEvent) isEvent()    {}
func (NewBattleEvent) isEvent()    {}
func (NewGameTokenEvent) isEvent() {}
func (BattleMoveEvent) isEvent()   {}
func (RoundEndedEvent) isEvent()   {}
func (BattleEndedEvent) isEvent()  {}
