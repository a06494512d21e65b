package listener

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum"

	"battlefeed/internal/model"
)

// Subscription owns one provider log subscription and its delivery loop.
type Subscription struct {
	kind   model.EventKind
	sub    ethereum.Subscription
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Kind returns the event kind the subscription delivers.
func (s *Subscription) Kind() model.EventKind {
	return s.kind
}

// Done is closed once the delivery loop has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe releases the provider subscription and waits for the delivery
// loop to exit. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		s.sub.Unsubscribe()
		<-s.done
	})
}

func (s *Subscription) active() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
