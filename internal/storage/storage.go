package storage

import (
	"context"

	"battlefeed/internal/model"
)

// Journal defines a sink for dispatched event records.
type Journal interface {
	PutEventBatch(ctx context.Context, records []model.EventRecord) error
}

// ErrorSink records logs that could not be decoded.
type ErrorSink interface {
	PutDecodeError(record model.DecodeError) error
}

// SignalSink records UI signals produced by handlers.
type SignalSink interface {
	PutSignal(signal model.Signal) error
}
