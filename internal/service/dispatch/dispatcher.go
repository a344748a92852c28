// Package dispatch runs best-effort side effects (emails, notifications,
// activity entries) after the owning operation has committed.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Task func(ctx context.Context) error

const (
	outcomeOK      = "ok"
	outcomeFailed  = "failed"
	outcomePanic   = "panic"
	outcomeDropped = "dropped"
)

type Dispatcher struct {
	logger   *slog.Logger
	timeout  time.Duration
	outcomes *prometheus.CounterVec

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New builds a dispatcher. When reg is nil the outcome counter is kept but
// not registered.
func New(logger *slog.Logger, reg prometheus.Registerer, timeout time.Duration) *Dispatcher {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "school_portal_dispatch_total",
		Help: "Side-effect tasks run after a committed operation, by task and outcome.",
	}, []string{"task", "outcome"})
	if reg != nil {
		reg.MustRegister(outcomes)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Dispatcher{
		logger:   logger.With("component", "dispatch"),
		timeout:  timeout,
		outcomes: outcomes,
	}
}

// Go runs task in the background under a fresh context bounded by the
// dispatcher timeout. Nothing from the scheduling request reaches the task,
// since request contexts are recycled once the response is written.
func (d *Dispatcher) Go(name string, task Task) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.outcomes.WithLabelValues(name, outcomeDropped).Inc()
		d.logger.Warn("dispatcher closed, task dropped", "task", name)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.run(name, task)
	}()
}

func (d *Dispatcher) run(name string, task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.outcomes.WithLabelValues(name, outcomePanic).Inc()
			d.logger.Error("dispatch task panicked", "task", name, "panic", fmt.Sprint(r))
		}
	}()

	if err := task(ctx); err != nil {
		d.outcomes.WithLabelValues(name, outcomeFailed).Inc()
		d.logger.Error("dispatch task failed", "task", name, "error", err)
		return
	}
	d.outcomes.WithLabelValues(name, outcomeOK).Inc()
}

// Wait blocks until every scheduled task has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting tasks and waits for the in-flight ones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

// Counter exposes the outcome counter for a task, for tests and diagnostics.
func (d *Dispatcher) Counter(task, outcome string) prometheus.Counter {
	return d.outcomes.WithLabelValues(task, outcome)
}
