package replay

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"battlefeed/internal/game"
	"battlefeed/internal/listener"
	"battlefeed/internal/model"
)

// LogSource serves historical contract logs.
type LogSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// RunConfig holds runtime settings for a replay.
type RunConfig struct {
	FromBlock uint64
	ToBlock   uint64
	BatchSize uint64
	Retry     RetryPolicy
}

// Runner feeds past game logs through the live listener bindings.
type Runner struct {
	cfg        RunConfig
	source     LogSource
	contract   *game.Contract
	dispatcher *listener.Dispatcher
	bindings   map[model.EventKind]listener.Binding
	checkpoint CheckpointStore
	logger     *zap.Logger
}

// NewRunner builds a Runner with its dependencies. checkpoint may be nil.
func NewRunner(
	cfg RunConfig,
	source LogSource,
	contract *game.Contract,
	dispatcher *listener.Dispatcher,
	bindings []listener.Binding,
	checkpoint CheckpointStore,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = listener.NewDispatcher(listener.DispatcherConfig{}, logger)
	}
	byKind := make(map[model.EventKind]listener.Binding, len(bindings))
	for _, binding := range bindings {
		byKind[binding.Kind] = binding
	}
	return &Runner{
		cfg:        cfg,
		source:     source,
		contract:   contract,
		dispatcher: dispatcher,
		bindings:   byKind,
		checkpoint: checkpoint,
		logger:     logger,
	}
}

// Run replays the configured block range. It returns the number of
// dispatched events.
func (r *Runner) Run(ctx context.Context) (int, error) {
	if r.source == nil {
		return 0, fmt.Errorf("log source is nil")
	}
	if r.contract == nil {
		return 0, fmt.Errorf("contract is nil")
	}
	if r.cfg.BatchSize == 0 {
		return 0, fmt.Errorf("batch size must be greater than zero")
	}

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.source.LatestBlockNumber(ctx)
		if err != nil {
			return 0, fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return 0, err
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to replay", zap.Uint64("from", from), zap.Uint64("to", to))
		return 0, nil
	}

	batches, err := Batches(from, to, r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	var total int
	for _, batch := range batches {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		logs, err := r.filterLogs(ctx, batch)
		if err != nil {
			return total, fmt.Errorf("filter logs: %w", err)
		}

		dispatched := 0
		for _, log := range uniqueLogs(logs) {
			if len(log.Topics) == 0 {
				continue
			}
			kind, ok := r.contract.KindOf(log.Topics[0])
			if !ok {
				r.logger.Debug("skip unknown topic", zap.String("topic0", log.Topics[0].Hex()))
				continue
			}
			binding, ok := r.bindings[kind]
			if !ok {
				continue
			}
			if r.dispatcher.Dispatch(ctx, kind, log, binding.Decode, binding.Handle) {
				dispatched++
			}
		}
		total += dispatched

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, batch.To); err != nil {
				return total, err
			}
		}

		r.logger.Info("batch complete",
			zap.Int("logs", len(logs)),
			zap.Int("dispatched", dispatched),
			zap.Uint64("from", batch.From),
			zap.Uint64("to", batch.To),
		)
	}

	return total, nil
}

func (r *Runner) filterLogs(ctx context.Context, batch BlockRange) ([]types.Log, error) {
	r.logger.Debug("fetch logs", zap.Uint64("from", batch.From), zap.Uint64("to", batch.To))

	var logs []types.Log
	err := r.cfg.Retry.do(ctx, r.logger, "filter logs", func(ctx context.Context) error {
		var err error
		logs, err = r.source.FilterLogs(ctx, batch.From, batch.To, []common.Address{r.contract.Address}, r.contract.Topics())
		return err
	})
	return logs, err
}

// uniqueLogs drops repeated (block, tx, index) entries within one batch.
// Batch ranges never overlap, so no state is kept across batches.
func uniqueLogs(logs []types.Log) []types.Log {
	seen := make(map[string]struct{}, len(logs))
	out := make([]types.Log, 0, len(logs))
	for _, log := range logs {
		id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, log)
	}
	return out
}
