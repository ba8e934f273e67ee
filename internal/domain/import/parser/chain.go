package parser

import (
	"context"
	"log/slog"
	"time"
)

// Attempt records the outcome of one strategy in a chain.
type Attempt struct {
	Detector string
	Rows     int
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the strategy produced rows.
func (a Attempt) Succeeded() bool {
	return a.Err == nil && a.Rows > 0
}

// AttemptObserver is notified after every strategy runs.
type AttemptObserver func(Attempt)

// Chain runs detectors in order and returns the first non-empty table.
type Chain struct {
	name      string
	detectors []Detector
	logger    *slog.Logger
	observer  AttemptObserver
}

// NewChain creates a chain for one source format.
func NewChain(name string, logger *slog.Logger, detectors ...Detector) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{name: name, detectors: detectors, logger: logger}
}

// WithObserver sets a callback invoked after each attempt (metrics hook).
func (c *Chain) WithObserver(obs AttemptObserver) *Chain {
	c.observer = obs
	return c
}

// Name returns the chain's source format name.
func (c *Chain) Name() string {
	return c.name
}

// Detectors returns the strategy names in evaluation order.
func (c *Chain) Detectors() []string {
	names := make([]string, len(c.detectors))
	for i, d := range c.detectors {
		names[i] = d.Name()
	}
	return names
}

// Run tries each detector until one yields rows. Strategy errors are logged
// and recorded, never returned; the only error is context cancellation.
// When every strategy comes up empty the returned table is empty and source
// is "".
func (c *Chain) Run(ctx context.Context, data []byte) (table RawTable, source string, attempts []Attempt, err error) {
	for _, d := range c.detectors {
		if err := ctx.Err(); err != nil {
			return RawTable{}, "", attempts, err
		}

		start := time.Now()
		t, detectErr := d.Detect(ctx, data)
		attempt := Attempt{
			Detector: d.Name(),
			Rows:     len(t.Rows),
			Err:      detectErr,
			Duration: time.Since(start),
		}
		attempts = append(attempts, attempt)
		if c.observer != nil {
			c.observer(attempt)
		}

		if detectErr != nil {
			c.logger.Debug("detector failed",
				"chain", c.name,
				"detector", d.Name(),
				"error", detectErr,
			)
			continue
		}

		c.logger.Debug("detector finished",
			"chain", c.name,
			"detector", d.Name(),
			"rows", attempt.Rows,
			"duration", attempt.Duration,
		)

		if !t.Empty() {
			return t, d.Name(), attempts, nil
		}
	}

	return RawTable{}, "", attempts, nil
}
