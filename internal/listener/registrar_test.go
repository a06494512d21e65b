package listener

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"battlefeed/internal/game"
	"battlefeed/internal/model"
)

var contractAddress = common.HexToAddress("0x4444444444444444444444444444444444444444")

func newTestContract(t *testing.T) *game.Contract {
	t.Helper()
	contract, err := game.NewContract(contractAddress)
	if err != nil {
		t.Fatalf("contract: %v", err)
	}
	return contract
}

func logFor(t *testing.T, contract *game.Contract, kind model.EventKind, index uint) types.Log {
	t.Helper()
	filter, err := contract.Filter(kind)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	return types.Log{
		Address:     contract.Address,
		Topics:      []common.Hash{filter.Query.Topics[0][0]},
		BlockNumber: 100,
		Index:       index,
	}
}

func stubDecode(event model.Event) DecodeFunc {
	return func(types.Log) (model.Event, error) { return event, nil }
}

func stubEvent(kind model.EventKind) model.Event {
	switch kind {
	case model.KindNewPlayer:
		return model.NewPlayerEvent{}
	case model.KindNewBattle:
		return model.NewBattleEvent{}
	case model.KindNewGameToken:
		return model.NewGameTokenEvent{}
	case model.KindBattleMove:
		return model.BattleMoveEvent{}
	case model.KindRoundEnded:
		return model.RoundEndedEvent{}
	default:
		return model.BattleEndedEvent{}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type counter struct {
	mu    sync.Mutex
	calls map[model.EventKind]int
}

func (c *counter) handler(kind model.EventKind) HandlerFunc {
	return func(model.Event) {
		c.mu.Lock()
		c.calls[kind]++
		c.mu.Unlock()
	}
}

func (c *counter) get(kind model.EventKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[kind]
}

func TestInstallTwiceDispatchesOnce(t *testing.T) {
	contract := newTestContract(t)
	provider := newFakeProvider()
	registrar := NewRegistrar(provider, nil, zap.NewNop())
	defer registrar.Close()

	ctx := context.Background()
	calls := &counter{calls: make(map[model.EventKind]int)}

	for _, kind := range model.AllKinds() {
		filter, err := contract.Filter(kind)
		if err != nil {
			t.Fatalf("filter: %v", err)
		}
		for i := 0; i < 2; i++ {
			if _, err := registrar.Install(ctx, filter, stubDecode(stubEvent(kind)), calls.handler(kind)); err != nil {
				t.Fatalf("install %s: %v", kind, err)
			}
		}
	}

	if provider.Live() != len(model.AllKinds()) {
		t.Fatalf("expected %d live subscriptions, got %d", len(model.AllKinds()), provider.Live())
	}

	for _, kind := range model.AllKinds() {
		provider.Emit(logFor(t, contract, kind, 1))
	}
	for _, kind := range model.AllKinds() {
		kind := kind
		waitFor(t, string(kind), func() bool { return calls.get(kind) >= 1 })
	}

	time.Sleep(50 * time.Millisecond)
	for _, kind := range model.AllKinds() {
		if got := calls.get(kind); got != 1 {
			t.Fatalf("%s dispatched %d times", kind, got)
		}
		if !registrar.Active(kind) {
			t.Fatalf("%s should be active", kind)
		}
	}
}

type errorRecorder struct {
	mu      sync.Mutex
	records []model.DecodeError
}

func (r *errorRecorder) PutDecodeError(record model.DecodeError) error {
	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()
	return nil
}

func (r *errorRecorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type journalRecorder struct {
	mu      sync.Mutex
	records []model.EventRecord
}

func (j *journalRecorder) PutEventBatch(_ context.Context, records []model.EventRecord) error {
	j.mu.Lock()
	j.records = append(j.records, records...)
	j.mu.Unlock()
	return nil
}

func TestDecodeFailureIsSurfacedAndSubscriptionSurvives(t *testing.T) {
	contract := newTestContract(t)
	provider := newFakeProvider()
	core, logs := observer.New(zapcore.DebugLevel)
	errs := &errorRecorder{}
	journal := &journalRecorder{}
	dispatcher := NewDispatcher(DispatcherConfig{ChainID: 43113, Errors: errs, Journal: journal}, zap.New(core))
	registrar := NewRegistrar(provider, dispatcher, zap.New(core))
	defer registrar.Close()

	var attempts int
	decode := func(types.Log) (model.Event, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("abi: length insufficient")
		}
		return model.BattleMoveEvent{IsFirstMove: true}, nil
	}
	calls := &counter{calls: make(map[model.EventKind]int)}

	filter, _ := contract.Filter(model.KindBattleMove)
	if _, err := registrar.Install(context.Background(), filter, decode, calls.handler(model.KindBattleMove)); err != nil {
		t.Fatalf("install: %v", err)
	}

	provider.Emit(logFor(t, contract, model.KindBattleMove, 1))
	waitFor(t, "decode error", func() bool { return errs.len() == 1 })
	if logs.FilterMessage("decode failed").Len() != 1 {
		t.Fatalf("decode failure was not logged")
	}
	errs.mu.Lock()
	first := errs.records[0]
	errs.mu.Unlock()
	if first.Expected != model.KindBattleMove || first.ChainID != 43113 {
		t.Fatalf("decode error mismatch: %+v", first)
	}

	provider.Emit(logFor(t, contract, model.KindBattleMove, 2))
	waitFor(t, "second dispatch", func() bool { return calls.get(model.KindBattleMove) == 1 })

	journal.mu.Lock()
	defer journal.mu.Unlock()
	if len(journal.records) != 1 || journal.records[0].LogIndex != 2 || journal.records[0].EventName != model.KindBattleMove {
		t.Fatalf("journal mismatch: %+v", journal.records)
	}
}

func TestHandlerPanicIsContained(t *testing.T) {
	contract := newTestContract(t)
	provider := newFakeProvider()
	core, logs := observer.New(zapcore.DebugLevel)
	registrar := NewRegistrar(provider, NewDispatcher(DispatcherConfig{}, zap.New(core)), zap.New(core))
	defer registrar.Close()

	var mu sync.Mutex
	var handled int
	handle := func(model.Event) {
		mu.Lock()
		handled++
		n := handled
		mu.Unlock()
		if n == 1 {
			panic("anchor not mounted")
		}
	}

	filter, _ := contract.Filter(model.KindRoundEnded)
	if _, err := registrar.Install(context.Background(), filter, stubDecode(model.RoundEndedEvent{}), handle); err != nil {
		t.Fatalf("install: %v", err)
	}

	provider.Emit(logFor(t, contract, model.KindRoundEnded, 1))
	provider.Emit(logFor(t, contract, model.KindRoundEnded, 2))
	waitFor(t, "two handler calls", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return handled == 2
	})
	if logs.FilterMessage("handler panic").Len() != 1 {
		t.Fatalf("handler panic was not logged")
	}
	if !registrar.Active(model.KindRoundEnded) {
		t.Fatalf("subscription should survive a handler panic")
	}
}

func TestRemovedLogsAreSkipped(t *testing.T) {
	contract := newTestContract(t)
	provider := newFakeProvider()
	registrar := NewRegistrar(provider, nil, nil)
	defer registrar.Close()

	calls := &counter{calls: make(map[model.EventKind]int)}
	filter, _ := contract.Filter(model.KindNewPlayer)
	if _, err := registrar.Install(context.Background(), filter, stubDecode(model.NewPlayerEvent{}), calls.handler(model.KindNewPlayer)); err != nil {
		t.Fatalf("install: %v", err)
	}

	removed := logFor(t, contract, model.KindNewPlayer, 1)
	removed.Removed = true
	provider.Emit(removed)
	provider.Emit(logFor(t, contract, model.KindNewPlayer, 2))

	waitFor(t, "dispatch", func() bool { return calls.get(model.KindNewPlayer) == 1 })
	time.Sleep(20 * time.Millisecond)
	if got := calls.get(model.KindNewPlayer); got != 1 {
		t.Fatalf("expected 1 dispatch, got %d", got)
	}
}

func TestSubscriptionErrorEndsLoop(t *testing.T) {
	contract := newTestContract(t)
	provider := newFakeProvider()
	core, logs := observer.New(zapcore.DebugLevel)
	registrar := NewRegistrar(provider, nil, zap.New(core))
	defer registrar.Close()

	filter, _ := contract.Filter(model.KindBattleEnded)
	sub, err := registrar.Install(context.Background(), filter, stubDecode(model.BattleEndedEvent{}), func(model.Event) {})
	if err != nil {
		t.Fatalf("install: %v", err)
	}

	provider.Fail(errors.New("websocket closed"))
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("delivery loop did not exit")
	}
	if registrar.Active(model.KindBattleEnded) {
		t.Fatalf("subscription should be inactive")
	}
	if logs.FilterMessage("subscription error").Len() != 1 {
		t.Fatalf("subscription error was not logged")
	}

	if _, err := registrar.Install(context.Background(), filter, stubDecode(model.BattleEndedEvent{}), func(model.Event) {}); err != nil {
		t.Fatalf("reinstall: %v", err)
	}
	if !registrar.Active(model.KindBattleEnded) {
		t.Fatalf("reinstalled subscription should be active")
	}
}

func TestInstallErrors(t *testing.T) {
	contract := newTestContract(t)
	provider := newFakeProvider()
	provider.fail = true
	registrar := NewRegistrar(provider, nil, nil)

	filter, _ := contract.Filter(model.KindNewPlayer)
	if _, err := registrar.Install(context.Background(), filter, stubDecode(model.NewPlayerEvent{}), func(model.Event) {}); err == nil {
		t.Fatalf("expected subscribe error")
	}
	if _, err := registrar.Install(context.Background(), filter, nil, nil); err == nil {
		t.Fatalf("expected error for missing decode and handler")
	}
	if registrar.Active(model.KindNewPlayer) {
		t.Fatalf("failed install should leave no subscription")
	}
}

func TestCloseDisposesSubscriptions(t *testing.T) {
	contract := newTestContract(t)
	provider := newFakeProvider()
	registrar := NewRegistrar(provider, nil, nil)

	bindings := make([]Binding, 0, len(model.AllKinds()))
	for _, kind := range model.AllKinds() {
		bindings = append(bindings, Binding{Kind: kind, Decode: stubDecode(stubEvent(kind)), Handle: func(model.Event) {}})
	}
	if err := registrar.InstallAll(context.Background(), contract, bindings); err != nil {
		t.Fatalf("install all: %v", err)
	}
	if provider.Live() != len(bindings) {
		t.Fatalf("expected %d live subscriptions, got %d", len(bindings), provider.Live())
	}

	registrar.Close()
	if provider.Live() != 0 {
		t.Fatalf("expected no live subscriptions, got %d", provider.Live())
	}
	for _, kind := range model.AllKinds() {
		if registrar.Active(kind) {
			t.Fatalf("%s should be inactive", kind)
		}
	}
}
