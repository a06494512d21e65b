package game

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"battlefeed/internal/model"
)

// Decoder turns raw game contract logs into typed events.
type Decoder struct {
	contract *Contract
}

// NewDecoder builds a decoder for the contract's events.
func NewDecoder(contract *Contract) *Decoder {
	return &Decoder{contract: contract}
}

// Decode converts any game log into its typed event.
func (d *Decoder) Decode(log types.Log) (model.Event, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	kind, ok := d.contract.KindOf(log.Topics[0])
	if !ok {
		return nil, fmt.Errorf("unsupported topic0: %s", log.Topics[0].Hex())
	}

	switch kind {
	case model.KindNewPlayer:
		return d.decodeNewPlayer(log)
	case model.KindNewBattle:
		return d.decodeNewBattle(log)
	case model.KindNewGameToken:
		return d.decodeNewGameToken(log)
	case model.KindBattleMove:
		return d.decodeBattleMove(log)
	case model.KindRoundEnded:
		return d.decodeRoundEnded(log)
	case model.KindBattleEnded:
		return d.decodeBattleEnded(log)
	default:
		return nil, fmt.Errorf("unsupported event name: %s", kind)
	}
}

// For returns a decode function that only accepts logs of the given kind.
func (d *Decoder) For(kind model.EventKind) func(types.Log) (model.Event, error) {
	return func(log types.Log) (model.Event, error) {
		event, err := d.Decode(log)
		if err != nil {
			return nil, err
		}
		if event.Kind() != kind {
			return nil, fmt.Errorf("expected %s, got %s", kind, event.Kind())
		}
		return event, nil
	}
}

func (d *Decoder) decodeNewPlayer(log types.Log) (model.Event, error) {
	event := d.contract.gameABI.Events[string(model.KindNewPlayer)]

	var indexed struct {
		Owner common.Address
	}
	if err := parseIndexed(&indexed, event, log.Topics); err != nil {
		return nil, err
	}

	values, err := unpackNonIndexed(event, log.Data, 1)
	if err != nil {
		return nil, err
	}
	name, err := asString(values[0])
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}

	return model.NewPlayerEvent{
		Owner: indexed.Owner.Hex(),
		Name:  name,
	}, nil
}

func (d *Decoder) decodeNewBattle(log types.Log) (model.Event, error) {
	event := d.contract.gameABI.Events[string(model.KindNewBattle)]

	var indexed struct {
		Player1 common.Address
		Player2 common.Address
	}
	if err := parseIndexed(&indexed, event, log.Topics); err != nil {
		return nil, err
	}

	values, err := unpackNonIndexed(event, log.Data, 1)
	if err != nil {
		return nil, err
	}
	battleName, err := asString(values[0])
	if err != nil {
		return nil, fmt.Errorf("battle name: %w", err)
	}

	return model.NewBattleEvent{
		BattleName: battleName,
		Player1:    indexed.Player1.Hex(),
		Player2:    indexed.Player2.Hex(),
	}, nil
}

func (d *Decoder) decodeNewGameToken(log types.Log) (model.Event, error) {
	event := d.contract.gameABI.Events[string(model.KindNewGameToken)]

	var indexed struct {
		Owner common.Address
	}
	if err := parseIndexed(&indexed, event, log.Topics); err != nil {
		return nil, err
	}

	values, err := unpackNonIndexed(event, log.Data, 3)
	if err != nil {
		return nil, err
	}
	id, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	attack, err := asBigInt(values[1])
	if err != nil {
		return nil, fmt.Errorf("attack strength: %w", err)
	}
	defense, err := asBigInt(values[2])
	if err != nil {
		return nil, fmt.Errorf("defense strength: %w", err)
	}

	return model.NewGameTokenEvent{
		Owner:           indexed.Owner.Hex(),
		ID:              id.String(),
		AttackStrength:  attack.String(),
		DefenseStrength: defense.String(),
	}, nil
}

func (d *Decoder) decodeBattleMove(log types.Log) (model.Event, error) {
	event := d.contract.gameABI.Events[string(model.KindBattleMove)]

	var indexed struct {
		BattleName  common.Hash
		IsFirstMove bool
	}
	if err := parseIndexed(&indexed, event, log.Topics); err != nil {
		return nil, err
	}

	return model.BattleMoveEvent{
		BattleNameHash: indexed.BattleName.Hex(),
		IsFirstMove:    indexed.IsFirstMove,
	}, nil
}

func (d *Decoder) decodeRoundEnded(log types.Log) (model.Event, error) {
	event := d.contract.gameABI.Events[string(model.KindRoundEnded)]
	if err := checkTopicCount(event, log.Topics); err != nil {
		return nil, err
	}

	values, err := unpackNonIndexed(event, log.Data, 1)
	if err != nil {
		return nil, err
	}
	damaged, ok := values[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("damaged players: unsupported type %T", values[0])
	}

	players := make([]string, 0, len(damaged))
	for _, addr := range damaged {
		players = append(players, addr.Hex())
	}
	return model.RoundEndedEvent{DamagedPlayers: players}, nil
}

func (d *Decoder) decodeBattleEnded(log types.Log) (model.Event, error) {
	event := d.contract.gameABI.Events[string(model.KindBattleEnded)]

	var indexed struct {
		Winner common.Address
		Loser  common.Address
	}
	if err := parseIndexed(&indexed, event, log.Topics); err != nil {
		return nil, err
	}

	values, err := unpackNonIndexed(event, log.Data, 1)
	if err != nil {
		return nil, err
	}
	battleName, err := asString(values[0])
	if err != nil {
		return nil, fmt.Errorf("battle name: %w", err)
	}

	return model.BattleEndedEvent{
		BattleName: battleName,
		Winner:     indexed.Winner.Hex(),
		Loser:      indexed.Loser.Hex(),
	}, nil
}

func parseIndexed(out interface{}, event abi.Event, topics []common.Hash) error {
	if err := checkTopicCount(event, topics); err != nil {
		return err
	}
	if err := abi.ParseTopics(out, indexedArguments(event.Inputs), topics[1:]); err != nil {
		return fmt.Errorf("parse topics: %w", err)
	}
	return nil
}

func checkTopicCount(event abi.Event, topics []common.Hash) error {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return fmt.Errorf("%s: expected %d topics, got %d", event.Name, indexedCount+1, len(topics))
	}
	return nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, data []byte, want int) ([]interface{}, error) {
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	if len(values) != want {
		return nil, fmt.Errorf("unexpected %s values: %d", event.Name, len(values))
	}
	return values, nil
}

func asString(value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unsupported string type %T", value)
	}
	return s, nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}
