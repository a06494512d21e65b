package listener

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"battlefeed/internal/model"
	"battlefeed/internal/storage"
)

// DispatcherConfig holds the optional sinks of a Dispatcher.
type DispatcherConfig struct {
	ChainID uint64
	Journal storage.Journal
	Errors  storage.ErrorSink
}

// Dispatcher decodes logs and runs handlers one at a time. Failures in decode,
// journaling, or the handler are logged and contained to the single log.
type Dispatcher struct {
	cfg    DispatcherConfig
	logger *zap.Logger
	mu     sync.Mutex
}

func NewDispatcher(cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{cfg: cfg, logger: logger}
}

// Dispatch decodes log and hands the event to handle. It reports whether the
// handler completed.
func (d *Dispatcher) Dispatch(ctx context.Context, kind model.EventKind, log types.Log, decode DecodeFunc, handle HandlerFunc) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	fields := []zap.Field{
		zap.String("event", string(kind)),
		zap.Uint64("block_number", log.BlockNumber),
		zap.String("tx_hash", log.TxHash.Hex()),
		zap.Uint("log_index", log.Index),
	}

	if log.Removed {
		d.logger.Debug("skip removed log", fields...)
		return false
	}

	event, err := decode(log)
	if err != nil {
		d.logger.Error("decode failed", append(fields, zap.Error(err))...)
		d.writeDecodeError(kind, log, err)
		return false
	}

	if d.cfg.Journal != nil {
		record := d.buildEventRecord(log, event)
		if err := d.cfg.Journal.PutEventBatch(ctx, []model.EventRecord{record}); err != nil {
			d.logger.Warn("journal write failed", append(fields, zap.Error(err))...)
		}
	}

	return d.runHandler(event, handle, fields)
}

func (d *Dispatcher) runHandler(event model.Event, handle HandlerFunc, fields []zap.Field) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panic", append(fields, zap.Any("panic", r), zap.Stack("stack"))...)
			ok = false
		}
	}()
	handle(event)
	return true
}

func (d *Dispatcher) writeDecodeError(kind model.EventKind, log types.Log, err error) {
	if d.cfg.Errors == nil {
		return
	}
	topic0 := ""
	if len(log.Topics) > 0 {
		topic0 = log.Topics[0].Hex()
	}
	record := model.DecodeError{
		ChainID:     d.cfg.ChainID,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topic0:      topic0,
		Expected:    kind,
		Error:       err.Error(),
	}
	if werr := d.cfg.Errors.PutDecodeError(record); werr != nil {
		d.logger.Warn("decode error write failed", zap.Error(werr))
	}
}

func (d *Dispatcher) buildEventRecord(log types.Log, event model.Event) model.EventRecord {
	return model.EventRecord{
		ChainID:     d.cfg.ChainID,
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash.Hex(),
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		EventName:   event.Kind(),
		Decoded:     event,
		ReceivedAt:  time.Now().UTC().Format(time.RFC3339Nano),
	}
}
