package listener

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
)

type fakeProvider struct {
	mu   sync.Mutex
	subs map[*fakeSubscription]struct{}
	fail bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{subs: make(map[*fakeSubscription]struct{})}
}

func (p *fakeProvider) SubscribeFilterLogs(_ context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return nil, errors.New("dial refused")
	}
	sub := &fakeSubscription{
		provider: p,
		query:    query,
		ch:       ch,
		errCh:    make(chan error, 1),
		quit:     make(chan struct{}),
	}
	p.subs[sub] = struct{}{}
	return sub, nil
}

// Emit delivers log to every live subscription whose topic0 filter matches.
func (p *fakeProvider) Emit(log types.Log) {
	p.mu.Lock()
	targets := make([]*fakeSubscription, 0, len(p.subs))
	for sub := range p.subs {
		if sub.matches(log) {
			targets = append(targets, sub)
		}
	}
	p.mu.Unlock()

	for _, sub := range targets {
		select {
		case sub.ch <- log:
		case <-sub.quit:
		}
	}
}

// Fail pushes a transport error into every live subscription.
func (p *fakeProvider) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for sub := range p.subs {
		sub.errCh <- err
	}
}

func (p *fakeProvider) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

type fakeSubscription struct {
	provider *fakeProvider
	query    ethereum.FilterQuery
	ch       chan<- types.Log
	errCh    chan error
	quit     chan struct{}
	once     sync.Once
}

func (s *fakeSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.provider.mu.Lock()
		delete(s.provider.subs, s)
		s.provider.mu.Unlock()
		close(s.quit)
	})
}

func (s *fakeSubscription) Err() <-chan error {
	return s.errCh
}

func (s *fakeSubscription) matches(log types.Log) bool {
	if len(s.query.Topics) == 0 || len(log.Topics) == 0 {
		return true
	}
	for _, topic := range s.query.Topics[0] {
		if topic == log.Topics[0] {
			return true
		}
	}
	return false
}
