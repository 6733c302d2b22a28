// Package queue moves observation recording off the polling goroutines.
package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
	"github.com/superdelivery/storefront/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrQueueFull is returned by Record when the worker for the order is backed up.
var ErrQueueFull = errors.New("observation queue full")

// Dispatcher routes observations to a fixed set of workers sharded by order
// ID, so observations of one order are recorded in the order they were seen.
type Dispatcher struct {
	workers []chan domain.StatusObservation
	next    ports.ObservationRecorder
	log     zerolog.Logger
}

var _ ports.ObservationRecorder = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher feeding next from numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, next ports.ObservationRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.StatusObservation, numWorkers),
		next:    next,
		log:     log.With().Str("component", "observation_queue").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.StatusObservation, channelBuffer)
	}
	return d
}

// Run processes observations until ctx is cancelled, then records whatever
// is still buffered and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i, ch := range d.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.runWorker(ctx, i, ch)
		}()
	}
	wg.Wait()
	return nil
}

// Record enqueues obs without blocking. It fails with ErrQueueFull when the
// worker responsible for the order is backed up.
func (d *Dispatcher) Record(_ context.Context, obs domain.StatusObservation) error {
	select {
	case d.workers[d.shardIndex(obs.OrderID)] <- obs:
		return nil
	default:
		metrics.ObservationsRecordedTotal.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

// shardIndex maps an order ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(orderID int) int {
	return int(uint(orderID) % uint(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.StatusObservation) {
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case obs := <-ch:
			d.record(ctx, id, obs)
		}
	}
}

func (d *Dispatcher) drain(id int, ch <-chan domain.StatusObservation) {
	ctx := context.Background()
	for {
		select {
		case obs := <-ch:
			d.record(ctx, id, obs)
		default:
			return
		}
	}
}

func (d *Dispatcher) record(ctx context.Context, id int, obs domain.StatusObservation) {
	if err := d.next.Record(ctx, obs); err != nil {
		d.log.Error().Err(err).
			Int("order_id", obs.OrderID).
			Str("status", string(obs.Status)).
			Int("worker_id", id).
			Msg("observation recording failed")
	}
}
