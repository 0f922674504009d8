package recorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmorin/wsbridge/internal/event"
)

// Config holds batching settings for the recorder.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	BufferSize    int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     500,
		FlushInterval: time.Second,
		BufferSize:    5000,
	}
}

// Metrics counts recorder activity since start.
type Metrics struct {
	Inserts int64
	Drops   int64
	Errors  int64
	Flushes int64
}

// eventRow is the database representation of one recorded event.
type eventRow struct {
	Session    string
	Instance   string
	EventType  string
	Payload    []byte
	RecordedAt int64
}

// Recorder consumes manager events and writes them to the
// connection_events table in batches.
type Recorder struct {
	cfg      Config
	logger   *slog.Logger
	instance string
	session  string

	db *pgxpool.Pool

	// Input from the manager's emitter
	input chan event.Event
	sub   *event.Subscription

	// Batching
	batch       []eventRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics Metrics
}

// New creates a Recorder. Each recorder gets a fresh session id so restarts
// of the same instance remain distinguishable in the database.
func New(cfg Config, instance string, db *pgxpool.Pool, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		cfg:      cfg,
		logger:   logger,
		instance: instance,
		session:  uuid.NewString(),
		db:       db,
		input:    make(chan event.Event, cfg.BufferSize),
		batch:    make([]eventRow, 0, cfg.BatchSize),
	}
}

// Session returns the recorder's session id.
func (r *Recorder) Session() string {
	return r.session
}

// Attach subscribes the recorder to an emitter. The handler never blocks;
// events arriving while the buffer is full are counted and dropped.
func (r *Recorder) Attach(e *event.Emitter) {
	r.sub = e.SubscribeAll(func(ev event.Event) {
		select {
		case r.input <- ev:
		default:
			r.batchMu.Lock()
			r.metrics.Drops++
			r.batchMu.Unlock()
		}
	})
}

// Start begins consuming events and writing to the database.
func (r *Recorder) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.flushTicker = time.NewTicker(r.cfg.FlushInterval)

	r.wg.Add(1)
	go r.consumeLoop()

	r.wg.Add(1)
	go r.flushLoop()

	r.logger.Info("recorder started",
		"session", r.session,
		"batch_size", r.cfg.BatchSize,
		"flush_interval", r.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the recorder.
func (r *Recorder) Stop(ctx context.Context) error {
	r.logger.Info("stopping recorder")

	if r.sub != nil {
		r.sub.Unsubscribe()
	}
	if r.cancel != nil {
		r.cancel()
	}
	if r.flushTicker != nil {
		r.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("recorder stopped")
	case <-ctx.Done():
		r.logger.Warn("recorder stop timed out")
	}

	// Final flush
	r.flush()

	return nil
}

// Stats returns current metrics.
func (r *Recorder) Stats() Metrics {
	r.batchMu.Lock()
	defer r.batchMu.Unlock()
	return r.metrics
}

// consumeLoop drains the input channel and accumulates batches.
func (r *Recorder) consumeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case ev := <-r.input:
			r.handleEvent(ev)
		}
	}
}

// flushLoop periodically flushes the batch.
func (r *Recorder) flushLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.flushTicker.C:
			r.flush()
		}
	}
}

// handleEvent transforms and adds an event to the batch.
func (r *Recorder) handleEvent(ev event.Event) {
	row := r.transform(ev)

	r.batchMu.Lock()
	r.batch = append(r.batch, row)
	shouldFlush := len(r.batch) >= r.cfg.BatchSize
	r.batchMu.Unlock()

	if shouldFlush {
		r.flush()
	}
}

// transform converts an event to an eventRow. Payloads that cannot be
// marshaled (error values, for one) are stored as their string form.
func (r *Recorder) transform(ev event.Event) eventRow {
	var payload []byte
	switch p := ev.Payload.(type) {
	case nil:
	case error:
		payload, _ = json.Marshal(p.Error())
	default:
		var err error
		payload, err = json.Marshal(p)
		if err != nil {
			payload = nil
		}
	}

	return eventRow{
		Session:    r.session,
		Instance:   r.instance,
		EventType:  string(ev.Type),
		Payload:    payload,
		RecordedAt: time.Now().UnixMicro(),
	}
}

// flush writes the current batch to the database.
func (r *Recorder) flush() {
	r.batchMu.Lock()
	if len(r.batch) == 0 {
		r.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := r.batch
	r.batch = make([]eventRow, 0, r.cfg.BatchSize)
	r.batchMu.Unlock()

	if r.db == nil {
		return
	}

	start := time.Now()

	if err := r.batchInsert(batch); err != nil {
		r.logger.Error("batch insert failed", "error", err, "count", len(batch))
		r.batchMu.Lock()
		r.metrics.Errors++
		r.batchMu.Unlock()
		return
	}

	r.batchMu.Lock()
	r.metrics.Inserts += int64(len(batch))
	r.metrics.Flushes++
	r.batchMu.Unlock()

	r.logger.Debug("flushed events",
		"count", len(batch),
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch. The table is append-only.
func (r *Recorder) batchInsert(rows []eventRow) error {
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO connection_events (session_id, instance_id, event_type, payload, recorded_at)
			VALUES ($1, $2, $3, $4, $5)
		`, row.Session, row.Instance, row.EventType, row.Payload, row.RecordedAt)
	}

	results := r.db.SendBatch(r.ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return nil
}
