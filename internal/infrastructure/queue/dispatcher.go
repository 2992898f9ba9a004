package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/parkingapp/auth-service/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ActivityWriter is the persistence capability the dispatcher needs. Satisfied
// by ports.ActivityStore implementations.
type ActivityWriter interface {
	InsertActivity(ctx context.Context, event *domain.ActivityEvent) error
}

// Dispatcher routes activity events to a fixed set of workers using
// consistent hashing on the username, so a single user's audit trail is
// written in emission order. Implements ports.ActivitySink.
type Dispatcher struct {
	workers []chan domain.ActivityEvent
	store   ActivityWriter
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store ActivityWriter, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.ActivityEvent, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ActivityEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Emit sends an event to the worker responsible for its username. When the
// worker's buffer is full the event is dropped rather than blocking the
// request path.
func (d *Dispatcher) Emit(event domain.ActivityEvent) {
	select {
	case d.workers[d.shardIndex(event.Username)] <- event:
	default:
		d.log.Warn().Str("username", event.Username).Str("kind", string(event.Kind)).Msg("activity buffer full, event dropped")
	}
}

// shardIndex maps a username deterministically to a worker index.
func (d *Dispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ActivityEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.store.InsertActivity(ctx, &event); err != nil {
				d.log.Error().Err(err).
					Str("username", event.Username).
					Int("worker_id", id).
					Msg("activity insert failed")
			}
		}
	}
}
