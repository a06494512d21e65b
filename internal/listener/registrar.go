package listener

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"battlefeed/internal/game"
	"battlefeed/internal/model"
)

const logBufferSize = 64

// Registrar keeps at most one live subscription per contract event kind.
type Registrar struct {
	provider   Provider
	dispatcher *Dispatcher
	logger     *zap.Logger

	mu   sync.Mutex
	subs map[model.EventKind]*Subscription
}

// NewRegistrar builds a Registrar with its dependencies.
func NewRegistrar(provider Provider, dispatcher *Dispatcher, logger *zap.Logger) *Registrar {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = NewDispatcher(DispatcherConfig{}, logger)
	}
	return &Registrar{
		provider:   provider,
		dispatcher: dispatcher,
		logger:     logger,
		subs:       make(map[model.EventKind]*Subscription),
	}
}

// Install replaces any existing subscription for the filter's kind with a new
// one that decodes each delivered log and passes it to handle.
func (r *Registrar) Install(ctx context.Context, filter game.Filter, decode DecodeFunc, handle HandlerFunc) (*Subscription, error) {
	if r.provider == nil {
		return nil, fmt.Errorf("provider is nil")
	}
	if decode == nil || handle == nil {
		return nil, fmt.Errorf("decode and handler are required for %s", filter.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.subs[filter.Kind]; ok {
		old.Unsubscribe()
		delete(r.subs, filter.Kind)
		r.logger.Debug("listener removed", zap.String("event", string(filter.Kind)))
	}

	logs := make(chan types.Log, logBufferSize)
	sub, err := r.provider.SubscribeFilterLogs(ctx, filter.Query, logs)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", filter.Kind, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		kind:   filter.Kind,
		sub:    sub,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go r.deliver(loopCtx, s, logs, decode, handle)

	r.subs[filter.Kind] = s
	r.logger.Info("listener installed", zap.String("event", string(filter.Kind)))
	return s, nil
}

// InstallAll installs one listener per binding on the contract's filters.
func (r *Registrar) InstallAll(ctx context.Context, contract *game.Contract, bindings []Binding) error {
	for _, binding := range bindings {
		filter, err := contract.Filter(binding.Kind)
		if err != nil {
			return err
		}
		if _, err := r.Install(ctx, filter, binding.Decode, binding.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Active reports whether a live subscription exists for kind.
func (r *Registrar) Active(kind model.EventKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[kind]
	return ok && s.active()
}

// Close disposes every subscription.
func (r *Registrar) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for kind, s := range r.subs {
		s.Unsubscribe()
		delete(r.subs, kind)
	}
}

func (r *Registrar) deliver(ctx context.Context, s *Subscription, logs <-chan types.Log, decode DecodeFunc, handle HandlerFunc) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-s.sub.Err():
			if ok && err != nil {
				r.logger.Warn("subscription error", zap.String("event", string(s.kind)), zap.Error(err))
			}
			return
		case log := <-logs:
			if ctx.Err() != nil {
				return
			}
			r.dispatcher.Dispatch(ctx, s.kind, log, decode, handle)
		}
	}
}
