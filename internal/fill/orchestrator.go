package fill

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"planfill/internal/domain"
	"planfill/internal/port"
)

const (
	defaultBatchSize  = 45
	defaultMaxRetries = 2
)

// Options tunes batch partitioning and per-batch retries.
type Options struct {
	// BatchSize bounds the keys sent per backend request.
	BatchSize int
	// MaxRetries is how many times a failed batch is reissued before
	// its keys are left unfilled.
	MaxRetries int
}

// DefaultOptions returns the production batching settings.
func DefaultOptions() Options {
	return Options{BatchSize: defaultBatchSize, MaxRetries: defaultMaxRetries}
}

// Result aggregates one orchestration pass.
type Result struct {
	Content       domain.ContentMap
	TotalBatches  int
	FailedBatches int
}

// Orchestrator turns a Structure into a ContentMap by batching keys
// against a text generator and applying deterministic overrides last.
// An Orchestrator carries no per-run state.
type Orchestrator struct {
	gen      port.TextGenerator
	observer port.ProgressObserver
	logger   *zap.Logger
	opts     Options
}

// New creates an Orchestrator. A nil observer disables progress events.
func New(gen port.TextGenerator, observer port.ProgressObserver, logger *zap.Logger, opts Options) *Orchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	return &Orchestrator{gen: gen, observer: observer, logger: logger, opts: opts}
}

// Run generates content for every binding key. Batches run strictly in
// sequence; a batch that fails all its retries is skipped without
// blocking its siblings. Returns domain.ErrGenerationFailed only when
// every batch failed.
func (o *Orchestrator) Run(ctx context.Context, structure domain.Structure, userCtx domain.UserContext) (*Result, error) {
	batches := partition(structure.Keys(), o.opts.BatchSize)
	result := &Result{
		Content:      domain.ContentMap{},
		TotalBatches: len(batches),
	}

	for i, batch := range batches {
		content, err := o.runBatch(ctx, batch, userCtx)
		if err != nil {
			result.FailedBatches++
			o.logger.Warn("batch failed, keys left unfilled",
				zap.Int("batch", i+1),
				zap.Int("total", len(batches)),
				zap.Int("keys", len(batch)),
				zap.Error(err))
			o.event("batch_failed", fmt.Sprintf("batch %d of %d", i+1, len(batches)))
			continue
		}
		for k, v := range content {
			result.Content[k] = v
		}
		o.event("batch_completed", fmt.Sprintf("batch %d of %d", i+1, len(batches)))
	}

	if len(batches) > 0 && len(result.Content) == 0 {
		return result, domain.ErrGenerationFailed
	}

	ApplyOverrides(result.Content, structure, userCtx)
	return result, nil
}

// runBatch issues one batch request with bounded retries. Transport
// errors and unparseable replies are retried alike.
func (o *Orchestrator) runBatch(ctx context.Context, keys []string, userCtx domain.UserContext) (map[string]string, error) {
	input := port.GenerateInput{Context: userCtx, Keys: keys}

	var lastErr error
	for attempt := 0; attempt <= o.opts.MaxRetries; attempt++ {
		out, err := o.gen.Generate(ctx, input)
		if err == nil {
			return out.Content, nil
		}
		lastErr = err
		o.logger.Debug("batch attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return nil, fmt.Errorf("batch exhausted retries: %w", lastErr)
}

func (o *Orchestrator) event(event, detail string) {
	if o.observer != nil {
		o.observer.Event(event, detail)
	}
}

// partition splits keys into runs of at most size, preserving order.
func partition(keys []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		batches = append(batches, keys[start:end])
	}
	return batches
}
