package node

import (
	"sync"

	"github.com/Sovereign-Labs/solana-proofs/types"
)

// DefaultLagBuffer is the per-subscriber buffer capacity: the number of
// pending updates a subscriber may fall behind before it starts observing
// gaps.
const DefaultLagBuffer = 32

// hub fans finalized updates out to subscribers. Publishing never blocks:
// a subscriber that cannot keep up has its oldest pending update evicted
// (a gap) so the finalization pipeline is never stalled by a slow consumer.
type hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
	lag  int
}

type subscriber struct {
	hub     *hub
	updates chan *types.Update
	once    sync.Once
}

func newHub(lag int) *hub {
	if lag <= 0 {
		lag = DefaultLagBuffer
	}
	return &hub{
		subs: make(map[*subscriber]struct{}),
		lag:  lag,
	}
}

func (h *hub) subscribe() *subscriber {
	sub := &subscriber{
		hub:     h,
		updates: make(chan *types.Update, h.lag),
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	subscriberGauge.Update(int64(len(h.subs)))
	h.mu.Unlock()
	return sub
}

func (h *hub) publish(update *types.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.updates <- update:
			continue
		default:
		}
		// Buffer full: evict the oldest pending update, then retry once.
		// The retry can still lose a race with the subscriber draining the
		// channel, in which case the update is simply dropped as a gap too.
		select {
		case <-sub.updates:
			subscriberGapCounter.Inc(1)
		default:
		}
		select {
		case sub.updates <- update:
		default:
			subscriberGapCounter.Inc(1)
		}
	}
}

// Updates is the subscriber's receive channel.
func (s *subscriber) Updates() <-chan *types.Update {
	return s.updates
}

// Close detaches the subscriber from the hub.
func (s *subscriber) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		subscriberGauge.Update(int64(len(s.hub.subs)))
		s.hub.mu.Unlock()
	})
}
