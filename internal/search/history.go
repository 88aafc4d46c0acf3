package search

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"moviestream/searchservice/internal/domain"
	"moviestream/searchservice/internal/metrics"
)

const (
	defaultHistoryBuffer = 64
	historyRecordTimeout = 5 * time.Second
)

// HistoryRecorder receives a best-effort record of each matched search.
// Implementations may be arbitrarily unreliable; the dispatcher swallows and
// logs every failure so history can never affect a search response.
type HistoryRecorder interface {
	Record(ctx context.Context, entry domain.HistoryEntry) error
}

type historyDispatcher struct {
	recorder HistoryRecorder
	entries  chan domain.HistoryEntry
	logger   *slog.Logger
	started  atomic.Bool
}

func newHistoryDispatcher(recorder HistoryRecorder, buffer int, logger *slog.Logger) *historyDispatcher {
	if buffer <= 0 {
		buffer = defaultHistoryBuffer
	}
	return &historyDispatcher{
		recorder: recorder,
		entries:  make(chan domain.HistoryEntry, buffer),
		logger:   logger,
	}
}

func (d *historyDispatcher) Start(ctx context.Context) {
	if d.recorder == nil {
		return
	}
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	go d.run(ctx)
}

// Notify queues an entry without blocking. When the buffer is full the entry
// is dropped and counted; search latency is worth more than a history row.
func (d *historyDispatcher) Notify(entry domain.HistoryEntry) {
	if d.recorder == nil {
		return
	}
	entry.ID = uuid.NewString()
	select {
	case d.entries <- entry:
	default:
		metrics.HistoryDroppedTotal.Inc()
		d.logger.Warn("history queue full, entry dropped", slog.String("query", entry.Query))
	}
}

func (d *historyDispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry := <-d.entries:
			recordCtx, cancel := context.WithTimeout(context.Background(), historyRecordTimeout)
			err := d.recorder.Record(recordCtx, entry)
			cancel()
			if err != nil {
				metrics.HistoryFailuresTotal.Inc()
				d.logger.Warn("history record failed",
					slog.String("query", entry.Query),
					slog.Int("resultCount", entry.ResultCount),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
