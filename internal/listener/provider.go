package listener

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"

	"battlefeed/internal/model"
)

// Provider delivers contract logs for a filter query.
type Provider interface {
	SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
}

// DecodeFunc turns a raw log into a typed event.
type DecodeFunc func(types.Log) (model.Event, error)

// HandlerFunc consumes a decoded event.
type HandlerFunc func(model.Event)

// Binding pairs an event kind with its decoder and handler.
type Binding struct {
	Kind   model.EventKind
	Decode DecodeFunc
	Handle HandlerFunc
}
