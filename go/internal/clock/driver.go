package clock

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// driver calls tick on every ticker fire until stopped. Ticks run on a single
// goroutine, so they never overlap.
type driver struct {
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
}

func startDriver(clock Clock, interval time.Duration, generation uint64, tick func(generation uint64)) *driver {
	ctx, cancel := context.WithCancel(context.Background())
	d := &driver{
		generation: generation,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	ticker := clock.NewTicker(interval)
	go func() {
		defer close(d.done)
		defer stopTicker(ticker)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if ctx.Err() != nil {
					return
				}
				tick(d.generation)
			}
		}
	}()
	return d
}

// Stop cancels the driver and waits for its goroutine to exit. It must not be
// called while holding the engine lock, or from the driver goroutine itself.
func (d *driver) Stop() {
	d.cancel()
	<-d.done
}

func stopTicker(t clockwork.Ticker) {
	t.Stop()
	select {
	case <-t.Chan():
	default:
	}
}
