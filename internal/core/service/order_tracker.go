package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
	"github.com/superdelivery/storefront/internal/pkg/metrics"
)

const (
	DefaultOrderPollInterval  = 30 * time.Second
	DefaultActivePollInterval = 60 * time.Second

	pollKindOrder  = "order"
	pollKindActive = "active_orders"

	observationSource = "tracker"
)

// TrackingState is the lifecycle of a single poller.
type TrackingState string

const (
	StateLoading  TrackingState = "loading"
	StateTracking TrackingState = "tracking"
	StateTerminal TrackingState = "terminal"
	StateStopped  TrackingState = "stopped"
)

// TrackingHandle controls one running poller.
type TrackingHandle struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once

	mu    sync.RWMutex
	state TrackingState
}

// Stop cancels the poller and waits for it to exit. It is safe to call more
// than once, but must not be called from inside the update callback.
func (h *TrackingHandle) Stop() {
	h.stopOnce.Do(h.cancel)
	<-h.done
}

// Done is closed once the poller has exited for any reason.
func (h *TrackingHandle) Done() <-chan struct{} {
	return h.done
}

// State returns the poller's current state.
func (h *TrackingHandle) State() TrackingState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

func (h *TrackingHandle) setState(s TrackingState) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// TrackerConfig holds poll intervals. Zero values fall back to the defaults.
type TrackerConfig struct {
	OrderInterval  time.Duration
	ActiveInterval time.Duration
}

// OrderTracker polls order status on a fixed schedule.
type OrderTracker struct {
	api      ports.OrderAPI
	creds    ports.CredentialSource
	notifier ports.Notifier
	recorder ports.ObservationRecorder
	clock    clock.Clock
	cfg      TrackerConfig
	log      zerolog.Logger

	active atomic.Int64
}

// NewOrderTracker builds a tracker. recorder may be nil.
func NewOrderTracker(
	api ports.OrderAPI,
	creds ports.CredentialSource,
	notifier ports.Notifier,
	recorder ports.ObservationRecorder,
	clk clock.Clock,
	cfg TrackerConfig,
	log zerolog.Logger,
) *OrderTracker {
	if clk == nil {
		clk = clock.New()
	}
	if cfg.OrderInterval <= 0 {
		cfg.OrderInterval = DefaultOrderPollInterval
	}
	if cfg.ActiveInterval <= 0 {
		cfg.ActiveInterval = DefaultActivePollInterval
	}
	return &OrderTracker{
		api:      api,
		creds:    creds,
		notifier: notifier,
		recorder: recorder,
		clock:    clk,
		cfg:      cfg,
		log:      log.With().Str("component", "tracker").Logger(),
	}
}

// Active returns the number of pollers that have not exited yet.
func (t *OrderTracker) Active() int {
	return int(t.active.Load())
}

// TrackOrder fetches the order's tracking data now and then every order
// interval, passing each result to onUpdate. Polling ends after a delivered
// or cancelled status, on Stop, or when ctx is done.
func (t *OrderTracker) TrackOrder(ctx context.Context, orderID int, onUpdate func(domain.Tracking)) *TrackingHandle {
	var last domain.OrderStatus

	fetch := func(ctx context.Context) (bool, error) {
		token, ok := t.creds.Credential()
		if !ok {
			return false, domain.ErrAuthRequired
		}
		tr, err := t.api.OrderTracking(ctx, token, orderID)
		if err != nil {
			return false, err
		}
		if tr == nil {
			return false, fmt.Errorf("order %d: empty tracking response", orderID)
		}
		if err := ctx.Err(); err != nil {
			return false, err
		}

		if tr.Status != last {
			t.record(ctx, orderID, tr.Status)
			last = tr.Status
		}
		onUpdate(*tr)
		return tr.Status.IsTerminal(), nil
	}

	return t.start(ctx, pollKindOrder, t.cfg.OrderInterval, fetch,
		t.log.With().Int("order_id", orderID).Logger())
}

// TrackActiveOrders polls the customer's in-progress orders every active
// interval until stopped.
func (t *OrderTracker) TrackActiveOrders(ctx context.Context, customerID int, onUpdate func([]domain.ActiveOrder)) *TrackingHandle {
	seen := make(map[int]domain.OrderStatus)

	fetch := func(ctx context.Context) (bool, error) {
		token, ok := t.creds.Credential()
		if !ok {
			return false, domain.ErrAuthRequired
		}
		orders, err := t.api.ActiveOrders(ctx, token, customerID)
		if err != nil {
			return false, err
		}
		if err := ctx.Err(); err != nil {
			return false, err
		}

		for _, o := range orders {
			if seen[o.ID] != o.Status {
				t.record(ctx, o.ID, o.Status)
				seen[o.ID] = o.Status
			}
		}
		onUpdate(orders)
		return false, nil
	}

	return t.start(ctx, pollKindActive, t.cfg.ActiveInterval, fetch,
		t.log.With().Int("customer_id", customerID).Logger())
}

func (t *OrderTracker) start(
	ctx context.Context,
	kind string,
	interval time.Duration,
	fetch func(context.Context) (bool, error),
	log zerolog.Logger,
) *TrackingHandle {
	ctx, cancel := context.WithCancel(ctx)
	h := &TrackingHandle{cancel: cancel, done: make(chan struct{}), state: StateLoading}

	// The ticker exists before the first fetch so that clock advances made
	// after the first update are never missed.
	ticker := t.clock.Ticker(interval)

	t.active.Add(1)
	metrics.TrackingActivePollers.WithLabelValues(kind).Inc()
	log.Debug().Dur("interval", interval).Msg("poller started")

	go func() {
		defer func() {
			ticker.Stop()
			cancel()
			t.active.Add(-1)
			metrics.TrackingActivePollers.WithLabelValues(kind).Dec()
			log.Debug().Str("state", string(h.State())).Msg("poller exited")
			close(h.done)
		}()

		if t.tick(ctx, h, kind, fetch, log) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				h.setState(StateStopped)
				return
			case <-ticker.C:
				if t.tick(ctx, h, kind, fetch, log) {
					return
				}
			}
		}
	}()

	return h
}

// tick runs one fetch and reports whether the poller should exit.
func (t *OrderTracker) tick(
	ctx context.Context,
	h *TrackingHandle,
	kind string,
	fetch func(context.Context) (bool, error),
	log zerolog.Logger,
) bool {
	if ctx.Err() != nil {
		h.setState(StateStopped)
		return true
	}

	terminal, err := fetch(ctx)
	switch {
	case ctx.Err() != nil:
		h.setState(StateStopped)
		return true
	case errors.Is(err, domain.ErrAuthRequired):
		log.Info().Msg("session ended, stopping poller")
		h.setState(StateStopped)
		return true
	case err != nil:
		metrics.TrackingPollsTotal.WithLabelValues(kind, "error").Inc()
		log.Warn().Err(err).Msg("poll failed")
		t.notifier.Notify(domain.Notice{
			Level:   domain.NoticeError,
			Title:   "Tracking update failed",
			Message: "Could not refresh order status. Retrying shortly.",
			At:      t.clock.Now(),
		})
		return false
	}

	metrics.TrackingPollsTotal.WithLabelValues(kind, "ok").Inc()
	if terminal {
		log.Info().Msg("order reached a final status, stopping poller")
		h.setState(StateTerminal)
		return true
	}
	h.setState(StateTracking)
	return false
}

func (t *OrderTracker) record(ctx context.Context, orderID int, status domain.OrderStatus) {
	if t.recorder == nil {
		return
	}
	obs := domain.StatusObservation{
		OrderID:    orderID,
		Status:     status,
		ObservedAt: t.clock.Now().UTC(),
		Source:     observationSource,
	}
	if err := t.recorder.Record(context.WithoutCancel(ctx), obs); err != nil {
		t.log.Warn().Err(err).Int("order_id", orderID).Str("status", string(status)).Msg("failed to record observation")
	}
}
