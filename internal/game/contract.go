package game

import (
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"battlefeed/internal/model"
)

// Filter identifies one contract event kind and the log query that matches it.
type Filter struct {
	Kind  model.EventKind
	Query ethereum.FilterQuery
}

// Contract is a handle on a deployed game contract.
type Contract struct {
	Address common.Address

	gameABI abi.ABI
	byTopic map[common.Hash]model.EventKind
}

// NewContract binds the game ABI to a contract address.
func NewContract(address common.Address) (*Contract, error) {
	gameABI, err := GameABI()
	if err != nil {
		return nil, fmt.Errorf("parse game abi: %w", err)
	}

	byTopic := make(map[common.Hash]model.EventKind, len(model.AllKinds()))
	for _, kind := range model.AllKinds() {
		event, ok := gameABI.Events[string(kind)]
		if !ok {
			return nil, fmt.Errorf("game abi missing event %s", kind)
		}
		byTopic[event.ID] = kind
	}

	return &Contract{Address: address, gameABI: gameABI, byTopic: byTopic}, nil
}

// Filter returns the log filter for a single event kind.
func (c *Contract) Filter(kind model.EventKind) (Filter, error) {
	event, ok := c.gameABI.Events[string(kind)]
	if !ok {
		return Filter{}, fmt.Errorf("unknown event kind: %s", kind)
	}
	return Filter{
		Kind: kind,
		Query: ethereum.FilterQuery{
			Addresses: []common.Address{c.Address},
			Topics:    [][]common.Hash{{event.ID}},
		},
	}, nil
}

// Topics returns the topic0 of every game event.
func (c *Contract) Topics() []common.Hash {
	topics := make([]common.Hash, 0, len(c.byTopic))
	for _, kind := range model.AllKinds() {
		topics = append(topics, c.gameABI.Events[string(kind)].ID)
	}
	return topics
}

// KindOf maps a topic0 back to its event kind.
func (c *Contract) KindOf(topic0 common.Hash) (model.EventKind, bool) {
	kind, ok := c.byTopic[topic0]
	return kind, ok
}
